package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"moodquest/internal/modules/focus/domain"
	focusout "moodquest/internal/modules/focus/port/out"

	_ "modernc.org/sqlite"
)

// SQLiteHistoryStore keeps a local read model of finished sessions for the
// history command and the TUI footer stats. Authoritative state stays on the
// server; this table can be deleted at any time.
type SQLiteHistoryStore struct {
	db *sql.DB
}

func NewSQLiteHistoryStore(dbPath string) (*SQLiteHistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteHistoryStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteHistoryStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS session_history (
  session_id TEXT PRIMARY KEY,
  task_id TEXT,
  subtask_id TEXT,
  outcome TEXT NOT NULL,
  started_at TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  focused_minutes INTEGER NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create session_history table: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryStore) Record(ctx context.Context, entry domain.HistoryEntry) error {
	const stmt = `
INSERT OR REPLACE INTO session_history
  (session_id, task_id, subtask_id, outcome, started_at, ended_at, focused_minutes)
VALUES (?, ?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		entry.SessionID,
		entry.Work.TaskID,
		entry.Work.SubtaskID,
		string(entry.Outcome),
		entry.StartedAt.UTC().Format(time.RFC3339),
		entry.EndedAt.UTC().Format(time.RFC3339),
		entry.FocusedMinutes,
	)
	if err != nil {
		return fmt.Errorf("record session history: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryStore) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
SELECT session_id, task_id, subtask_id, outcome, started_at, ended_at, focused_minutes
FROM session_history
ORDER BY ended_at DESC
LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query session history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		var outcome, startedAt, endedAt string
		if err := rows.Scan(&entry.SessionID, &entry.Work.TaskID, &entry.Work.SubtaskID, &outcome, &startedAt, &endedAt, &entry.FocusedMinutes); err != nil {
			return nil, fmt.Errorf("scan session history row: %w", err)
		}
		entry.Outcome = domain.Status(outcome)
		if entry.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if entry.EndedAt, err = time.Parse(time.RFC3339, endedAt); err != nil {
			return nil, fmt.Errorf("parse ended_at: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Totals aggregates completed sessions only; cancelled time is not focus
// time.
func (s *SQLiteHistoryStore) Totals(ctx context.Context, since time.Time) (domain.HistoryTotals, error) {
	const query = `
SELECT COUNT(*), COALESCE(SUM(focused_minutes), 0)
FROM session_history
WHERE outcome = ? AND ended_at >= ?;
`
	var totals domain.HistoryTotals
	row := s.db.QueryRowContext(ctx, query, string(domain.StatusCompleted), since.UTC().Format(time.RFC3339))
	if err := row.Scan(&totals.Sessions, &totals.FocusedMinutes); err != nil {
		return domain.HistoryTotals{}, fmt.Errorf("aggregate session history: %w", err)
	}
	return totals, nil
}

func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}

var _ focusout.HistoryStore = (*SQLiteHistoryStore)(nil)

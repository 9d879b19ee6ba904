package out

import (
	"context"
	"encoding/json"
	"time"

	"moodquest/internal/modules/focus/domain"
)

// SessionAPI mirrors the remote session service. Every call is a single
// request/response exchange; the returned session is canonical and replaces
// whatever the client believed before.
type SessionAPI interface {
	Active(ctx context.Context) ([]domain.WorkSession, error)
	Start(ctx context.Context, work domain.WorkRef, plannedMinutes *int) (domain.WorkSession, error)
	Pause(ctx context.Context, sessionID string) (domain.WorkSession, error)
	Resume(ctx context.Context, sessionID string) (domain.WorkSession, error)
	Complete(ctx context.Context, sessionID string, markWorkDone bool) (domain.WorkSession, json.RawMessage, error)
	Cancel(ctx context.Context, sessionID string) (domain.WorkSession, error)
	Extend(ctx context.Context, sessionID string, extraMinutes int) (domain.WorkSession, error)
}

// SessionCache is the tab-lifetime store of the user's live sessions. Reads
// are open to every surface; writes belong to the lifecycle interactor and
// the background refresh only.
type SessionCache interface {
	All() []domain.WorkSession
	Get(sessionID string) (domain.WorkSession, bool)
	ByWork(ref domain.WorkRef) (domain.WorkSession, bool)
	Upsert(session domain.WorkSession)
	UpsertMany(sessions []domain.WorkSession)
	Remove(sessionID string)
}

// HistoryStore is a local read model of finished sessions. It is
// best-effort: losing it loses nothing authoritative.
type HistoryStore interface {
	Record(ctx context.Context, entry domain.HistoryEntry) error
	Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	Totals(ctx context.Context, since time.Time) (domain.HistoryTotals, error)
}

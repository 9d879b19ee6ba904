package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	adapterout "moodquest/internal/modules/focus/adapter/out"
	"moodquest/internal/modules/focus/domain"
	"moodquest/internal/modules/focus/dto"
	"moodquest/internal/modules/focus/service"
	"moodquest/internal/modules/focus/usecase"
	apperrors "moodquest/internal/platform/errors"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

// fakeAPI behaves like the remote session service: it owns the canonical
// session and computes pause snapshots and resume timestamps from its own
// clock, the way the server would.
type fakeAPI struct {
	clk      *fakeClock
	nextID   int
	sessions map[string]domain.WorkSession
	fail     error
	rewards  json.RawMessage
}

func newFakeAPI(clk *fakeClock) *fakeAPI {
	return &fakeAPI{clk: clk, sessions: make(map[string]domain.WorkSession)}
}

func (f *fakeAPI) Active(context.Context) ([]domain.WorkSession, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	var out []domain.WorkSession
	for _, s := range f.sessions {
		if !s.Status.Terminal() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeAPI) Start(_ context.Context, work domain.WorkRef, planned *int) (domain.WorkSession, error) {
	if f.fail != nil {
		return domain.WorkSession{}, f.fail
	}
	f.nextID++
	s := domain.WorkSession{
		ID:              "sess-" + string(rune('0'+f.nextID)),
		Work:            work,
		PlannedDuration: planned,
		Status:          domain.StatusActive,
		StartedAt:       f.clk.Now(),
	}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeAPI) Pause(_ context.Context, id string) (domain.WorkSession, error) {
	if f.fail != nil {
		return domain.WorkSession{}, f.fail
	}
	s := f.sessions[id]
	s.Status = domain.StatusPaused
	s.ElapsedAtPause = int(f.clk.Now().Sub(s.StartedAt).Minutes())
	f.sessions[id] = s
	return s, nil
}

func (f *fakeAPI) Resume(_ context.Context, id string) (domain.WorkSession, error) {
	if f.fail != nil {
		return domain.WorkSession{}, f.fail
	}
	s := f.sessions[id]
	s.Status = domain.StatusActive
	// Rebase the start so elapsed derivation continues from the snapshot.
	s.StartedAt = f.clk.Now().Add(-time.Duration(s.ElapsedAtPause) * time.Minute)
	s.ElapsedAtPause = 0
	f.sessions[id] = s
	return s, nil
}

func (f *fakeAPI) Complete(_ context.Context, id string, _ bool) (domain.WorkSession, json.RawMessage, error) {
	if f.fail != nil {
		return domain.WorkSession{}, nil, f.fail
	}
	s := f.sessions[id]
	s.Status = domain.StatusCompleted
	f.sessions[id] = s
	return s, f.rewards, nil
}

func (f *fakeAPI) Cancel(_ context.Context, id string) (domain.WorkSession, error) {
	if f.fail != nil {
		return domain.WorkSession{}, f.fail
	}
	s := f.sessions[id]
	s.Status = domain.StatusCancelled
	f.sessions[id] = s
	return s, nil
}

func (f *fakeAPI) Extend(_ context.Context, id string, extra int) (domain.WorkSession, error) {
	if f.fail != nil {
		return domain.WorkSession{}, f.fail
	}
	s := f.sessions[id]
	v := *s.PlannedDuration + extra
	s.PlannedDuration = &v
	f.sessions[id] = s
	return s, nil
}

type recordedHistory struct {
	entries []domain.HistoryEntry
	fail    error
}

func (r *recordedHistory) Record(_ context.Context, e domain.HistoryEntry) error {
	if r.fail != nil {
		return r.fail
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *recordedHistory) Recent(context.Context, int) ([]domain.HistoryEntry, error) {
	return r.entries, nil
}

func (r *recordedHistory) Totals(context.Context, time.Time) (domain.HistoryTotals, error) {
	totals := domain.HistoryTotals{}
	for _, e := range r.entries {
		if e.Outcome == domain.StatusCompleted {
			totals.Sessions++
			totals.FocusedMinutes += e.FocusedMinutes
		}
	}
	return totals, nil
}

func fixture(t *testing.T) (*fakeClock, *fakeAPI, *adapterout.MemorySessionCache, *recordedHistory, *usecase.Interactor) {
	t.Helper()
	clk := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	api := newFakeAPI(clk)
	cache := adapterout.NewMemorySessionCache()
	history := &recordedHistory{}
	uc := usecase.NewInteractor(service.NewFocusService(clk), api, cache, history).(*usecase.Interactor)
	return clk, api, cache, history, uc
}

func TestStartRejectsSecondSessionForSameWork(t *testing.T) {
	t.Parallel()
	_, _, _, _, uc := fixture(t)
	ctx := context.Background()

	if _, err := uc.Start(ctx, dto.StartInput{TaskID: "t1", PlannedMinutes: 25}); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := uc.Start(ctx, dto.StartInput{TaskID: "t1", PlannedMinutes: 25})
	if !errors.Is(err, apperrors.ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}
}

func TestStartRejectsDoubleTargetedRef(t *testing.T) {
	t.Parallel()
	_, _, cache, _, uc := fixture(t)

	_, err := uc.Start(context.Background(), dto.StartInput{TaskID: "t1", SubtaskID: "s1", PlannedMinutes: 25})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(cache.All()) != 0 {
		t.Fatalf("failed start must not touch the cache")
	}
}

func TestPauseResumeRoundTripPreservesElapsed(t *testing.T) {
	t.Parallel()
	clk, _, cache, _, uc := fixture(t)
	ctx := context.Background()

	started, err := uc.Start(ctx, dto.StartInput{TaskID: "t1", PlannedMinutes: 25})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	clk.advance(10 * time.Minute)
	before, _ := cache.Get(started.ID)
	elapsedBefore := domain.Reconcile(before, clk.Now()).ElapsedSeconds

	if _, err := uc.Pause(ctx, started.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}
	clk.advance(2 * time.Hour)
	paused, _ := cache.Get(started.ID)
	if got := domain.Reconcile(paused, clk.Now()).ElapsedSeconds; got != 600 {
		t.Fatalf("paused elapsed must freeze at 600s, got %d", got)
	}

	if _, err := uc.Resume(ctx, started.ID); err != nil {
		t.Fatalf("resume: %v", err)
	}
	resumed, _ := cache.Get(started.ID)
	elapsedAfter := domain.Reconcile(resumed, clk.Now()).ElapsedSeconds
	if diff := elapsedAfter - elapsedBefore; diff < -1 || diff > 1 {
		t.Fatalf("elapsed after resume must match elapsed before pause, got %d vs %d", elapsedAfter, elapsedBefore)
	}
}

func TestLifecycleFailureLeavesCacheUntouched(t *testing.T) {
	t.Parallel()
	clk, api, cache, _, uc := fixture(t)
	ctx := context.Background()

	started, err := uc.Start(ctx, dto.StartInput{TaskID: "t1", PlannedMinutes: 25})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.advance(5 * time.Minute)

	api.fail = apperrors.ErrAPIUnavailable
	if _, err := uc.Pause(ctx, started.ID); !errors.Is(err, apperrors.ErrAPIUnavailable) {
		t.Fatalf("expected api failure, got %v", err)
	}

	cached, ok := cache.Get(started.ID)
	if !ok {
		t.Fatalf("session must survive a failed pause")
	}
	if cached.Status != domain.StatusActive {
		t.Fatalf("session must stay active after failed pause, got %s", cached.Status)
	}
}

func TestCompleteRemovesFromCacheAndRecordsHistory(t *testing.T) {
	t.Parallel()
	clk, api, cache, history, uc := fixture(t)
	ctx := context.Background()
	api.rewards = json.RawMessage(`{"xp":120,"cards":["ember-fox"]}`)

	started, err := uc.Start(ctx, dto.StartInput{TaskID: "t1", PlannedMinutes: 25})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.advance(25 * time.Minute)

	out, err := uc.Complete(ctx, started.ID, true)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if string(out.Rewards) != `{"xp":120,"cards":["ember-fox"]}` {
		t.Fatalf("rewards payload must pass through untouched, got %s", out.Rewards)
	}
	if _, ok := cache.Get(started.ID); ok {
		t.Fatalf("completed session must leave the cache")
	}
	if len(history.entries) != 1 || history.entries[0].FocusedMinutes != 25 {
		t.Fatalf("expected one 25-minute history entry, got %+v", history.entries)
	}

	if _, err := uc.Complete(ctx, started.ID, false); !errors.Is(err, apperrors.ErrSessionNotFound) {
		t.Fatalf("second complete must fail with not found, got %v", err)
	}
}

func TestCompleteSucceedsWhenHistoryWriteFails(t *testing.T) {
	t.Parallel()
	_, _, _, history, uc := fixture(t)
	ctx := context.Background()
	history.fail = errors.New("disk full")

	started, err := uc.Start(ctx, dto.StartInput{TaskID: "t1", PlannedMinutes: 25})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := uc.Complete(ctx, started.ID, false); err != nil {
		t.Fatalf("history failure must not fail a confirmed completion: %v", err)
	}
}

func TestRefreshReconcilesCacheWithServer(t *testing.T) {
	t.Parallel()
	_, api, cache, _, uc := fixture(t)
	ctx := context.Background()

	started, err := uc.Start(ctx, dto.StartInput{TaskID: "t1", PlannedMinutes: 25})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	// Another surface completed the session on the server.
	s := api.sessions[started.ID]
	s.Status = domain.StatusCompleted
	api.sessions[started.ID] = s
	// And the server reports a session this tab has never seen.
	api.sessions["sess-x"] = domain.WorkSession{
		ID: "sess-x", Status: domain.StatusActive, StartedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}

	if _, err := uc.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, ok := cache.Get(started.ID); ok {
		t.Fatalf("server-completed session must leave the cache on refresh")
	}
	if _, ok := cache.Get("sess-x"); !ok {
		t.Fatalf("server-reported session must enter the cache on refresh")
	}

	api.fail = apperrors.ErrAPIUnavailable
	if _, err := uc.Refresh(ctx); err == nil {
		t.Fatalf("expected refresh failure")
	}
	if _, ok := cache.Get("sess-x"); !ok {
		t.Fatalf("failed refresh must leave the cache untouched")
	}
}

func TestExtendGuards(t *testing.T) {
	t.Parallel()
	_, _, cache, _, uc := fixture(t)
	ctx := context.Background()

	started, err := uc.Start(ctx, dto.StartInput{TaskID: "t1", PlannedMinutes: 25})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	out, err := uc.Extend(ctx, started.ID, 10)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if out.PlannedMinutes != 35 {
		t.Fatalf("expected 35 planned minutes, got %d", out.PlannedMinutes)
	}
	cached, _ := cache.Get(started.ID)
	if cached.StartedAt != started.StartedAt {
		t.Fatalf("extend must not reset the start timestamp")
	}

	untimed, err := uc.Start(ctx, dto.StartInput{TaskID: "t2", Untimed: true})
	if err != nil {
		t.Fatalf("start untimed: %v", err)
	}
	if _, err := uc.Extend(ctx, untimed.ID, 10); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("extending an untimed session must be invalid, got %v", err)
	}
}

package usecase

import (
	"context"
	"time"

	"moodquest/internal/modules/focus/domain"
	"moodquest/internal/modules/focus/dto"
	focusin "moodquest/internal/modules/focus/port/in"
	focusout "moodquest/internal/modules/focus/port/out"
	"moodquest/internal/modules/focus/service"
	apperrors "moodquest/internal/platform/errors"
)

// Interactor is the session lifecycle controller. Every operation is one
// exchange with the remote service followed by a cache write; a failed
// exchange leaves the cache exactly as it was. Nothing here retries.
type Interactor struct {
	svc     *service.FocusService
	api     focusout.SessionAPI
	cache   focusout.SessionCache
	history focusout.HistoryStore
}

func NewInteractor(svc *service.FocusService, api focusout.SessionAPI, cache focusout.SessionCache, history focusout.HistoryStore) focusin.Usecase {
	return &Interactor{svc: svc, api: api, cache: cache, history: history}
}

func (i *Interactor) Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error) {
	work := domain.WorkRef{TaskID: input.TaskID, SubtaskID: input.SubtaskID}
	var planned *int
	if !input.Untimed {
		v := input.PlannedMinutes
		planned = &v
	}
	if err := i.svc.ValidateStart(work, planned); err != nil {
		return dto.SessionOutput{}, err
	}
	// Optimistic double-start block; the server enforces the same rule.
	if !work.Zero() {
		if _, ok := i.cache.ByWork(work); ok {
			return dto.SessionOutput{}, apperrors.ErrSessionExists
		}
	}

	session, err := i.api.Start(ctx, work, planned)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	i.cache.Upsert(session)
	return toOutput(session), nil
}

func (i *Interactor) Pause(ctx context.Context, sessionID string) (dto.SessionOutput, error) {
	prior, err := i.resolve(ctx, sessionID)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	if err := i.svc.EnsureTransition(prior, domain.StatusPaused); err != nil {
		return dto.SessionOutput{}, err
	}
	session, err := i.api.Pause(ctx, sessionID)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	i.cache.Upsert(session)
	return toOutput(session), nil
}

func (i *Interactor) Resume(ctx context.Context, sessionID string) (dto.SessionOutput, error) {
	prior, err := i.resolve(ctx, sessionID)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	if err := i.svc.EnsureTransition(prior, domain.StatusActive); err != nil {
		return dto.SessionOutput{}, err
	}
	// The server returns a fresh StartedAt that already accounts for the
	// paused interval, so elapsed derivation keeps working unchanged.
	session, err := i.api.Resume(ctx, sessionID)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	i.cache.Upsert(session)
	return toOutput(session), nil
}

func (i *Interactor) Complete(ctx context.Context, sessionID string, markWorkDone bool) (dto.CompleteOutput, error) {
	prior, err := i.resolve(ctx, sessionID)
	if err != nil {
		return dto.CompleteOutput{}, err
	}
	if err := i.svc.EnsureTransition(prior, domain.StatusCompleted); err != nil {
		return dto.CompleteOutput{}, err
	}
	session, rewards, err := i.api.Complete(ctx, sessionID, markWorkDone)
	if err != nil {
		return dto.CompleteOutput{}, err
	}
	i.cache.Remove(sessionID)
	i.recordHistory(ctx, prior, domain.StatusCompleted)
	return dto.CompleteOutput{Session: toOutput(session), Rewards: rewards}, nil
}

func (i *Interactor) Cancel(ctx context.Context, sessionID string) (dto.SessionOutput, error) {
	prior, err := i.resolve(ctx, sessionID)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	if err := i.svc.EnsureTransition(prior, domain.StatusCancelled); err != nil {
		return dto.SessionOutput{}, err
	}
	session, err := i.api.Cancel(ctx, sessionID)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	i.cache.Remove(sessionID)
	i.recordHistory(ctx, prior, domain.StatusCancelled)
	return toOutput(session), nil
}

func (i *Interactor) Extend(ctx context.Context, sessionID string, extraMinutes int) (dto.SessionOutput, error) {
	prior, err := i.resolve(ctx, sessionID)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	if err := i.svc.ValidateExtend(prior, extraMinutes); err != nil {
		return dto.SessionOutput{}, err
	}
	session, err := i.api.Extend(ctx, sessionID, extraMinutes)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	i.cache.Upsert(session)
	return toOutput(session), nil
}

// Refresh re-fetches the full active set and reconciles the cache with it:
// server sessions are upserted, cached ids the server no longer reports are
// dropped. On error the cache is untouched.
func (i *Interactor) Refresh(ctx context.Context) (dto.RefreshOutput, error) {
	sessions, err := i.api.Active(ctx)
	if err != nil {
		return dto.RefreshOutput{}, err
	}
	seen := make(map[string]struct{}, len(sessions))
	for _, s := range sessions {
		seen[s.ID] = struct{}{}
	}
	i.cache.UpsertMany(sessions)
	for _, cached := range i.cache.All() {
		if _, ok := seen[cached.ID]; !ok {
			i.cache.Remove(cached.ID)
		}
	}
	return dto.RefreshOutput{Sessions: len(sessions)}, nil
}

func (i *Interactor) List(_ context.Context) []dto.SessionOutput {
	all := i.cache.All()
	out := make([]dto.SessionOutput, 0, len(all))
	for _, s := range all {
		out = append(out, toOutput(s))
	}
	return out
}

func (i *Interactor) History(ctx context.Context, limit int) ([]dto.HistoryEntryOutput, error) {
	if i.history == nil {
		return nil, nil
	}
	entries, err := i.history.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HistoryEntryOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.HistoryEntryOutput{
			SessionID:      e.SessionID,
			Work:           e.Work.String(),
			Outcome:        string(e.Outcome),
			StartedAt:      e.StartedAt,
			EndedAt:        e.EndedAt,
			FocusedMinutes: e.FocusedMinutes,
		})
	}
	return out, nil
}

func (i *Interactor) HistoryTotals(ctx context.Context, since time.Time) (dto.HistoryTotalsOutput, error) {
	if i.history == nil {
		return dto.HistoryTotalsOutput{}, nil
	}
	totals, err := i.history.Totals(ctx, since)
	if err != nil {
		return dto.HistoryTotalsOutput{}, err
	}
	return dto.HistoryTotalsOutput{Sessions: totals.Sessions, FocusedMinutes: totals.FocusedMinutes}, nil
}

// resolve reads the session from the cache, falling through to one refresh
// for one-shot CLI invocations that begin with an empty cache. This is a
// read, not a mutation retry.
func (i *Interactor) resolve(ctx context.Context, sessionID string) (domain.WorkSession, error) {
	if s, ok := i.cache.Get(sessionID); ok {
		return s, nil
	}
	if _, err := i.Refresh(ctx); err != nil {
		return domain.WorkSession{}, err
	}
	if s, ok := i.cache.Get(sessionID); ok {
		return s, nil
	}
	return domain.WorkSession{}, apperrors.ErrSessionNotFound
}

// recordHistory is best-effort: the server already confirmed the terminal
// transition, so a local read-model failure must not surface as a lifecycle
// error.
func (i *Interactor) recordHistory(ctx context.Context, prior domain.WorkSession, outcome domain.Status) {
	if i.history == nil {
		return
	}
	_ = i.history.Record(ctx, i.svc.HistoryEntry(prior, outcome))
}

func toOutput(s domain.WorkSession) dto.SessionOutput {
	out := dto.SessionOutput{
		ID:             s.ID,
		TaskID:         s.Work.TaskID,
		SubtaskID:      s.Work.SubtaskID,
		Work:           s.Work.String(),
		Untimed:        s.Untimed(),
		Status:         string(s.Status),
		StartedAt:      s.StartedAt,
		ElapsedAtPause: s.ElapsedAtPause,
	}
	if s.PlannedDuration != nil {
		out.PlannedMinutes = *s.PlannedDuration
	}
	return out
}

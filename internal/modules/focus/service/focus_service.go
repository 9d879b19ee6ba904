package service

import (
	"fmt"

	"moodquest/internal/modules/focus/domain"
	"moodquest/internal/platform/clock"
	apperrors "moodquest/internal/platform/errors"
)

// FocusService holds the client-side lifecycle rules. The server stays the
// authority on every transition; these guards only reject requests that are
// guaranteed to fail, before a network round trip.
type FocusService struct {
	clock clock.Clock
}

func NewFocusService(clk clock.Clock) *FocusService {
	return &FocusService{clock: clk}
}

func (s *FocusService) ValidateStart(work domain.WorkRef, plannedMinutes *int) error {
	if err := work.Validate(); err != nil {
		return err
	}
	if plannedMinutes != nil {
		if *plannedMinutes < 1 || *plannedMinutes > domain.MaxPlannedMinutes {
			return fmt.Errorf("planned minutes must be 1..%d or untimed: %w", domain.MaxPlannedMinutes, apperrors.ErrInvalidInput)
		}
	}
	return nil
}

func (s *FocusService) EnsureTransition(session domain.WorkSession, to domain.Status) error {
	if session.Status.Terminal() {
		return apperrors.ErrSessionFinished
	}
	if !session.Status.CanTransition(to) {
		return fmt.Errorf("cannot go %s -> %s: %w", session.Status, to, apperrors.ErrInvalidInput)
	}
	return nil
}

func (s *FocusService) ValidateExtend(session domain.WorkSession, extraMinutes int) error {
	if session.Status != domain.StatusActive {
		return fmt.Errorf("only active sessions can be extended: %w", apperrors.ErrInvalidInput)
	}
	if session.Untimed() {
		return fmt.Errorf("untimed sessions have no duration to extend: %w", apperrors.ErrInvalidInput)
	}
	if extraMinutes < 1 {
		return fmt.Errorf("extension must be at least one minute: %w", apperrors.ErrInvalidInput)
	}
	return nil
}

// HistoryEntry derives the local history row for a session that just
// finished. Focused minutes come from the same reconciler the timers use,
// frozen at the pause snapshot when the session ended from paused.
func (s *FocusService) HistoryEntry(prior domain.WorkSession, outcome domain.Status) domain.HistoryEntry {
	now := s.clock.Now()
	snap := domain.Reconcile(prior, now)
	return domain.HistoryEntry{
		SessionID:      prior.ID,
		Work:           prior.Work,
		Outcome:        outcome,
		StartedAt:      prior.StartedAt,
		EndedAt:        now,
		FocusedMinutes: snap.ElapsedSeconds / 60,
	}
}

package usecase

import (
	"context"
	"fmt"

	"moodquest/internal/modules/checkin/domain"
	"moodquest/internal/modules/checkin/dto"
	checkinin "moodquest/internal/modules/checkin/port/in"
	checkinout "moodquest/internal/modules/checkin/port/out"
	"moodquest/internal/platform/clock"
	apperrors "moodquest/internal/platform/errors"
)

// Sequencer owns one page instance's modal phase. It is single-owner state:
// only the home surface that created it may call Advance, and the phase only
// moves forward, so two modals from the queue can never be up at once.
type Sequencer struct {
	phase   domain.Phase
	clock   clock.Clock
	rewards checkinout.RewardsAPI
	bonus   checkinout.BonusAPI
	mood    checkinout.MoodAPI
}

func NewSequencer(clk clock.Clock, rewards checkinout.RewardsAPI, bonus checkinout.BonusAPI, mood checkinout.MoodAPI) checkinin.Sequencer {
	return &Sequencer{
		phase:   domain.PhaseCatchUp,
		clock:   clk,
		rewards: rewards,
		bonus:   bonus,
		mood:    mood,
	}
}

func (s *Sequencer) Phase() string {
	return s.phase.String()
}

// Advance moves one phase forward. Idempotent at done.
func (s *Sequencer) Advance() string {
	s.phase = s.phase.Next()
	return s.phase.String()
}

// Evaluate runs eligibility checks from the current phase forward until it
// finds a phase whose modal should be shown, skipping ineligible phases and
// phases whose check failed. A failing check is reported but never stalls
// the queue.
func (s *Sequencer) Evaluate(ctx context.Context) dto.GateOutput {
	var lastErr string
	for !s.phase.Terminal() {
		gate := s.evaluatePhase(ctx)
		if gate.Err != "" {
			lastErr = gate.Err
		}
		if gate.Show {
			gate.Err = lastErr
			return gate
		}
		s.phase = s.phase.Next()
	}
	return dto.GateOutput{Phase: s.phase.String(), Err: lastErr}
}

func (s *Sequencer) evaluatePhase(ctx context.Context) dto.GateOutput {
	gate := dto.GateOutput{Phase: s.phase.String()}
	switch s.phase {
	case domain.PhaseCatchUp:
		catchUp, err := s.rewards.ClaimCatchUp(ctx)
		if err != nil {
			gate.Err = fmt.Sprintf("catch-up check: %v", err)
			return gate
		}
		genres, err := s.rewards.UnlockedGenres(ctx)
		if err != nil {
			gate.Err = fmt.Sprintf("genre unlock check: %v", err)
		}
		catchUp.Genres = append(catchUp.Genres, genres...)
		if catchUp.Empty() {
			return gate
		}
		gate.Show = true
		gate.CatchUp = &dto.CatchUpOutput{
			LevelsGained: catchUp.LevelsGained,
			XP:           catchUp.XP,
			Genres:       catchUp.Genres,
		}

	case domain.PhaseDailyBonus:
		status, err := s.bonus.Status(ctx)
		if err != nil {
			gate.Err = fmt.Sprintf("daily bonus check: %v", err)
			return gate
		}
		if !status.Eligible {
			return gate
		}
		gate.Show = true
		gate.Bonus = &dto.BonusStatusOutput{
			Eligible: true,
			Streak:   status.Streak,
			Amount:   status.Amount,
		}

	case domain.PhaseMood:
		mood, err := s.mood.Latest(ctx)
		if err != nil && err != apperrors.ErrNoMoodEntry {
			gate.Err = fmt.Sprintf("mood check: %v", err)
			return gate
		}
		if err == apperrors.ErrNoMoodEntry {
			mood = domain.MoodStatus{}
		}
		gate.Show = mood.NeedsPrompt(s.clock.Now())
	}
	return gate
}

func (s *Sequencer) ClaimBonus(ctx context.Context) (dto.BonusClaimOutput, error) {
	claim, err := s.bonus.Claim(ctx)
	if err != nil {
		return dto.BonusClaimOutput{}, err
	}
	return dto.BonusClaimOutput{Amount: claim.Amount, Streak: claim.Streak}, nil
}

func (s *Sequencer) LogMood(ctx context.Context, score int) error {
	if score < 1 || score > 5 {
		return fmt.Errorf("mood score must be 1..5: %w", apperrors.ErrInvalidInput)
	}
	return s.mood.Log(ctx, score)
}

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"moodquest/internal/modules/checkin/domain"
	"moodquest/internal/modules/checkin/usecase"
	apperrors "moodquest/internal/platform/errors"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

type fakeGates struct {
	catchUp    domain.CatchUp
	catchUpErr error
	genres     []string
	bonus      domain.BonusStatus
	bonusErr   error
	mood       domain.MoodStatus
	moodErr    error
	claimed    int
	logged     []int
}

func (f *fakeGates) ClaimCatchUp(context.Context) (domain.CatchUp, error) {
	return f.catchUp, f.catchUpErr
}

func (f *fakeGates) UnlockedGenres(context.Context) ([]string, error) {
	return f.genres, nil
}

func (f *fakeGates) Status(context.Context) (domain.BonusStatus, error) {
	return f.bonus, f.bonusErr
}

func (f *fakeGates) Claim(context.Context) (domain.BonusClaim, error) {
	f.claimed++
	return domain.BonusClaim{Amount: f.bonus.Amount, Streak: f.bonus.Streak + 1}, nil
}

func (f *fakeGates) Latest(context.Context) (domain.MoodStatus, error) {
	return f.mood, f.moodErr
}

func (f *fakeGates) Log(_ context.Context, score int) error {
	f.logged = append(f.logged, score)
	return nil
}

func newSequencer(gates *fakeGates) *usecase.Sequencer {
	clk := fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return usecase.NewSequencer(clk, gates, gates, gates).(*usecase.Sequencer)
}

// Walks the queue the way the home surface does: evaluate, "show" whatever
// the gate asks for, advance, repeat. Returns the phases whose modals were
// shown, in order.
func drain(t *testing.T, seq *usecase.Sequencer) []string {
	t.Helper()
	var shown []string
	for i := 0; i < 8; i++ {
		gate := seq.Evaluate(context.Background())
		if !gate.Show {
			if gate.Phase != domain.PhaseDone.String() {
				t.Fatalf("a non-showing evaluate must land on done, got %s", gate.Phase)
			}
			return shown
		}
		shown = append(shown, gate.Phase)
		seq.Advance()
	}
	t.Fatalf("sequencer never reached done: shown %v", shown)
	return nil
}

func TestSequencerShowsAtMostOneModalAtATime(t *testing.T) {
	t.Parallel()
	// All 8 combinations of the three boolean gates.
	for mask := 0; mask < 8; mask++ {
		mask := mask
		t.Run(fmt.Sprintf("gates_%03b", mask), func(t *testing.T) {
			t.Parallel()
			gates := &fakeGates{
				mood: domain.MoodStatus{HasEntry: true, LoggedAt: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)},
			}
			var want []string
			if mask&4 != 0 {
				gates.catchUp = domain.CatchUp{LevelsGained: 2, XP: 300}
				want = append(want, "catchup")
			}
			if mask&2 != 0 {
				gates.bonus = domain.BonusStatus{Eligible: true, Amount: 50}
				want = append(want, "daily_bonus")
			}
			if mask&1 != 0 {
				gates.mood = domain.MoodStatus{}
				want = append(want, "mood")
			}

			shown := drain(t, newSequencer(gates))
			if len(shown) != len(want) {
				t.Fatalf("expected modals %v, got %v", want, shown)
			}
			for i := range want {
				if shown[i] != want[i] {
					t.Fatalf("expected order %v, got %v", want, shown)
				}
			}
		})
	}
}

func TestSequencerZeroModalsReachesDone(t *testing.T) {
	t.Parallel()
	gates := &fakeGates{
		mood: domain.MoodStatus{HasEntry: true, LoggedAt: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)},
	}
	seq := newSequencer(gates)

	gate := seq.Evaluate(context.Background())
	if gate.Show {
		t.Fatalf("nothing should show, got %s", gate.Phase)
	}
	if gate.Phase != "done" {
		t.Fatalf("expected done, got %s", gate.Phase)
	}
	if seq.Phase() != "done" {
		t.Fatalf("sequencer must rest at done")
	}
}

func TestSequencerFailedCheckAdvancesInsteadOfStalling(t *testing.T) {
	t.Parallel()
	gates := &fakeGates{
		catchUpErr: errors.New("rewards service down"),
		bonus:      domain.BonusStatus{Eligible: true, Amount: 50},
		mood:       domain.MoodStatus{HasEntry: true, LoggedAt: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)},
	}
	seq := newSequencer(gates)

	gate := seq.Evaluate(context.Background())
	if gate.Phase != "daily_bonus" || !gate.Show {
		t.Fatalf("failed catch-up check must fall through to daily bonus, got %+v", gate)
	}
	if gate.Err == "" {
		t.Fatalf("the failed check must still be reported")
	}
}

func TestSequencerGenresAloneShowCatchUp(t *testing.T) {
	t.Parallel()
	gates := &fakeGates{
		genres: []string{"synthwave"},
		mood:   domain.MoodStatus{HasEntry: true, LoggedAt: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)},
	}
	gate := newSequencer(gates).Evaluate(context.Background())
	if gate.Phase != "catchup" || !gate.Show {
		t.Fatalf("a genre unlock alone must show the catch-up modal, got %+v", gate)
	}
	if gate.CatchUp == nil || len(gate.CatchUp.Genres) != 1 {
		t.Fatalf("gate must carry the unlocked genres, got %+v", gate.CatchUp)
	}
}

func TestSequencerMissingMoodEntryShowsPrompt(t *testing.T) {
	t.Parallel()
	gates := &fakeGates{moodErr: apperrors.ErrNoMoodEntry}
	gate := newSequencer(gates).Evaluate(context.Background())
	if gate.Phase != "mood" || !gate.Show {
		t.Fatalf("a missing mood entry must show the prompt, got %+v", gate)
	}
}

func TestLogMoodValidatesScore(t *testing.T) {
	t.Parallel()
	gates := &fakeGates{}
	seq := newSequencer(gates)
	if err := seq.LogMood(context.Background(), 0); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("score 0 must be invalid, got %v", err)
	}
	if err := seq.LogMood(context.Background(), 4); err != nil {
		t.Fatalf("log mood: %v", err)
	}
	if len(gates.logged) != 1 || gates.logged[0] != 4 {
		t.Fatalf("expected one logged score of 4, got %v", gates.logged)
	}
}

func TestClaimBonusDelegates(t *testing.T) {
	t.Parallel()
	gates := &fakeGates{bonus: domain.BonusStatus{Eligible: true, Amount: 50, Streak: 3}}
	seq := newSequencer(gates)
	claim, err := seq.ClaimBonus(context.Background())
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claim.Amount != 50 || claim.Streak != 4 {
		t.Fatalf("unexpected claim %+v", claim)
	}
	if gates.claimed != 1 {
		t.Fatalf("expected exactly one claim call, got %d", gates.claimed)
	}
}

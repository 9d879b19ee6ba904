package domain

import "time"

// Phase is the first-load modal gate. It only moves forward: at most one of
// the candidate prompts is on screen at a time, in a fixed order, and a page
// instance that reaches done never shows another.
type Phase int

const (
	PhaseCatchUp Phase = iota
	PhaseDailyBonus
	PhaseMood
	PhaseDone
)

func (p Phase) Next() Phase {
	if p >= PhaseDone {
		return PhaseDone
	}
	return p + 1
}

func (p Phase) Terminal() bool {
	return p == PhaseDone
}

func (p Phase) String() string {
	switch p {
	case PhaseCatchUp:
		return "catchup"
	case PhaseDailyBonus:
		return "daily_bonus"
	case PhaseMood:
		return "mood"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

// MoodQualifyingPeriod is how recently a mood entry must have been logged to
// skip the mood prompt.
const MoodQualifyingPeriod = 24 * time.Hour

// CatchUp is what the rewards service granted when the client claimed
// retroactive level-up rewards.
type CatchUp struct {
	LevelsGained int
	XP           int
	Genres       []string
}

func (c CatchUp) Empty() bool {
	return c.LevelsGained == 0 && c.XP == 0 && len(c.Genres) == 0
}

type BonusStatus struct {
	Eligible bool
	Streak   int
	Amount   int
}

type BonusClaim struct {
	Amount int
	Streak int
}

// MoodStatus describes the latest mood entry, if any. FirstDay marks
// accounts created today, which never get the mood prompt.
type MoodStatus struct {
	HasEntry bool
	LoggedAt time.Time
	Score    int
	FirstDay bool
}

// NeedsPrompt reports whether the mood modal should be shown at the given
// instant.
func (m MoodStatus) NeedsPrompt(now time.Time) bool {
	if m.FirstDay {
		return false
	}
	if !m.HasEntry {
		return true
	}
	return now.Sub(m.LoggedAt) >= MoodQualifyingPeriod
}

package dto

type CatchUpOutput struct {
	LevelsGained int
	XP           int
	Genres       []string
}

type BonusStatusOutput struct {
	Eligible bool
	Streak   int
	Amount   int
}

type BonusClaimOutput struct {
	Amount int
	Streak int
}

// GateOutput is one sequencer step: the phase the queue landed on, whether
// its modal should be shown, and the payload that modal renders. Err carries
// a failed eligibility check for status display; a failed check never blocks
// the queue.
type GateOutput struct {
	Phase   string
	Show    bool
	CatchUp *CatchUpOutput
	Bonus   *BonusStatusOutput
	Err     string
}

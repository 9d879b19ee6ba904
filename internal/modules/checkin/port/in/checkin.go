package in

import (
	"context"

	"moodquest/internal/modules/checkin/dto"
)

// Sequencer drives the first-load modal queue. Evaluate lands on the next
// showable phase (or done); Advance is the single forward transition, called
// when the current modal is dismissed or claimed.
type Sequencer interface {
	Phase() string
	Evaluate(ctx context.Context) dto.GateOutput
	Advance() string
	ClaimBonus(ctx context.Context) (dto.BonusClaimOutput, error)
	LogMood(ctx context.Context, score int) error
}

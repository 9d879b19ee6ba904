package in

import (
	"context"

	"moodquest/internal/modules/checkin/dto"
	checkinin "moodquest/internal/modules/checkin/port/in"
)

type CLIHandler struct {
	sequencer checkinin.Sequencer
}

func NewCLIHandler(sequencer checkinin.Sequencer) CLIHandler {
	return CLIHandler{sequencer: sequencer}
}

func (h CLIHandler) Evaluate(ctx context.Context) dto.GateOutput {
	return h.sequencer.Evaluate(ctx)
}

func (h CLIHandler) Advance() string {
	return h.sequencer.Advance()
}

func (h CLIHandler) ClaimBonus(ctx context.Context) (dto.BonusClaimOutput, error) {
	return h.sequencer.ClaimBonus(ctx)
}

func (h CLIHandler) LogMood(ctx context.Context, score int) error {
	return h.sequencer.LogMood(ctx, score)
}

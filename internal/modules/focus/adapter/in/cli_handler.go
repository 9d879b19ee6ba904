package in

import (
	"context"
	"time"

	"moodquest/internal/modules/focus/dto"
	focusin "moodquest/internal/modules/focus/port/in"
)

type CLIHandler struct {
	usecase focusin.Usecase
}

func NewCLIHandler(usecase focusin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error) {
	return h.usecase.Start(ctx, input)
}

func (h CLIHandler) Pause(ctx context.Context, sessionID string) (dto.SessionOutput, error) {
	return h.usecase.Pause(ctx, sessionID)
}

func (h CLIHandler) Resume(ctx context.Context, sessionID string) (dto.SessionOutput, error) {
	return h.usecase.Resume(ctx, sessionID)
}

func (h CLIHandler) Complete(ctx context.Context, sessionID string, markWorkDone bool) (dto.CompleteOutput, error) {
	return h.usecase.Complete(ctx, sessionID, markWorkDone)
}

func (h CLIHandler) Cancel(ctx context.Context, sessionID string) (dto.SessionOutput, error) {
	return h.usecase.Cancel(ctx, sessionID)
}

func (h CLIHandler) Extend(ctx context.Context, sessionID string, extraMinutes int) (dto.SessionOutput, error) {
	return h.usecase.Extend(ctx, sessionID, extraMinutes)
}

func (h CLIHandler) Refresh(ctx context.Context) (dto.RefreshOutput, error) {
	return h.usecase.Refresh(ctx)
}

func (h CLIHandler) List(ctx context.Context) []dto.SessionOutput {
	return h.usecase.List(ctx)
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]dto.HistoryEntryOutput, error) {
	return h.usecase.History(ctx, limit)
}

func (h CLIHandler) HistoryTotals(ctx context.Context, since time.Time) (dto.HistoryTotalsOutput, error) {
	return h.usecase.HistoryTotals(ctx, since)
}

package in

import (
	"context"
	"time"

	"moodquest/internal/modules/focus/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error)
	Pause(ctx context.Context, sessionID string) (dto.SessionOutput, error)
	Resume(ctx context.Context, sessionID string) (dto.SessionOutput, error)
	Complete(ctx context.Context, sessionID string, markWorkDone bool) (dto.CompleteOutput, error)
	Cancel(ctx context.Context, sessionID string) (dto.SessionOutput, error)
	Extend(ctx context.Context, sessionID string, extraMinutes int) (dto.SessionOutput, error)
	Refresh(ctx context.Context) (dto.RefreshOutput, error)
	List(ctx context.Context) []dto.SessionOutput
	History(ctx context.Context, limit int) ([]dto.HistoryEntryOutput, error)
	HistoryTotals(ctx context.Context, since time.Time) (dto.HistoryTotalsOutput, error)
}

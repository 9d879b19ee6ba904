package out

import (
	"context"

	"moodquest/internal/modules/checkin/domain"
)

// RewardsAPI is the retroactive-rewards collaborator. ClaimCatchUp both
// claims and reports what was granted; an empty grant means nothing to show.
type RewardsAPI interface {
	ClaimCatchUp(ctx context.Context) (domain.CatchUp, error)
	UnlockedGenres(ctx context.Context) ([]string, error)
}

type BonusAPI interface {
	Status(ctx context.Context) (domain.BonusStatus, error)
	Claim(ctx context.Context) (domain.BonusClaim, error)
}

type MoodAPI interface {
	Latest(ctx context.Context) (domain.MoodStatus, error)
	Log(ctx context.Context, score int) error
}

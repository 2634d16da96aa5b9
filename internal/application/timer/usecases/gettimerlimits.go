package usecases

import (
	"context"

	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

type GetTimerLimitsUseCase struct {
	tierResolver timer.TierResolver
	logger       logger.Interface
}

func NewGetTimerLimitsUseCase(
	tierResolver timer.TierResolver,
	logger logger.Interface,
) *GetTimerLimitsUseCase {
	return &GetTimerLimitsUseCase{
		tierResolver: tierResolver,
		logger:       logger,
	}
}

// Execute returns the tier bounding the user's commitment durations.
func (uc *GetTimerLimitsUseCase) Execute(ctx context.Context, userID uint) (timer.Tier, error) {
	tier, err := uc.tierResolver.ActiveTierForUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return tier, nil
}

package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/persistence/models"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

// subscription statuses that grant commitment creation
var commitmentEligibleStatuses = []string{"active", "trialing"}

type SubscriptionTierResolverImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewSubscriptionTierResolver(
	db *gorm.DB,
	logger logger.Interface,
) timer.TierResolver {
	return &SubscriptionTierResolverImpl{
		db:     db,
		logger: logger,
	}
}

func (r *SubscriptionTierResolverImpl) ActiveTierForUser(ctx context.Context, userID uint) (timer.Tier, error) {
	var model models.SubscriptionModel

	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, commitmentEligibleStatuses).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", timer.ErrSubscriptionRequired
		}
		r.logger.Errorw("failed to resolve subscription tier", "user_id", userID, "error", err)
		return "", fmt.Errorf("failed to resolve subscription tier: %w", err)
	}

	return timer.TierFromPlanType(model.PlanType), nil
}

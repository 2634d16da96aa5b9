package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/persistence/models"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

type UserDirectoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewUserDirectory(
	db *gorm.DB,
	logger logger.Interface,
) timer.UserDirectory {
	return &UserDirectoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *UserDirectoryImpl) GetRecipient(ctx context.Context, userID uint) (*timer.Recipient, error) {
	var model models.UserModel

	if err := r.db.WithContext(ctx).First(&model, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get notification recipient", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get notification recipient: %w", err)
	}

	return &timer.Recipient{
		Email:     model.Email,
		FirstName: model.FirstName,
	}, nil
}

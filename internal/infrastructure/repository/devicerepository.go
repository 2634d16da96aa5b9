package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/amzibnewman/altrii-backend/internal/domain/device"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/persistence/mappers"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/persistence/models"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

type DeviceRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.DeviceMapper
	logger logger.Interface
}

func NewDeviceRepository(
	db *gorm.DB,
	logger logger.Interface,
) device.Repository {
	return &DeviceRepositoryImpl{
		db:     db,
		mapper: mappers.NewDeviceMapper(),
		logger: logger,
	}
}

func (r *DeviceRepositoryImpl) GetByID(ctx context.Context, id uint) (*device.Device, error) {
	var model models.DeviceModel

	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get device by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map device model to entity", "id", id, "error", err)
		return nil, fmt.Errorf("failed to map device: %w", err)
	}

	return entity, nil
}

func (r *DeviceRepositoryImpl) GetBySIDForUser(ctx context.Context, sid string, userID uint) (*device.Device, error) {
	var model models.DeviceModel

	if err := r.db.WithContext(ctx).
		Where("sid = ? AND user_id = ?", sid, userID).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get device by SID", "sid", sid, "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map device model to entity", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to map device: %w", err)
	}

	return entity, nil
}

func (r *DeviceRepositoryImpl) Update(ctx context.Context, entity *device.Device) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		r.logger.Errorw("failed to map device entity to model", "error", err)
		return fmt.Errorf("failed to map device entity: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", model.ID).
		Select("Name", "ProviderHandle", "UpdatedAt").
		Updates(model)
	if result.Error != nil {
		r.logger.Errorw("failed to update device", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("device %d not found", model.ID)
	}

	return nil
}

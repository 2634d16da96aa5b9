package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	vo "github.com/amzibnewman/altrii-backend/internal/domain/timer/valueobjects"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/persistence/mappers"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/persistence/models"
	"github.com/amzibnewman/altrii-backend/internal/shared/constants"
	"github.com/amzibnewman/altrii-backend/internal/shared/errors"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

type TimerCommitmentRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.TimerCommitmentMapper
	logger logger.Interface
}

func NewTimerCommitmentRepository(
	db *gorm.DB,
	logger logger.Interface,
) timer.CommitmentRepository {
	return &TimerCommitmentRepositoryImpl{
		db:     db,
		mapper: mappers.NewTimerCommitmentMapper(),
		logger: logger,
	}
}

func (r *TimerCommitmentRepositoryImpl) Create(ctx context.Context, commitment *timer.Commitment) error {
	model, err := r.mapper.ToModel(commitment)
	if err != nil {
		r.logger.Errorw("failed to map commitment entity to model", "error", err)
		return fmt.Errorf("failed to map commitment entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return timer.ErrActiveCommitmentExists
		}
		r.logger.Errorw("failed to create commitment in database", "error", err)
		return fmt.Errorf("failed to create commitment: %w", err)
	}

	if err := commitment.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set commitment ID", "error", err)
		return fmt.Errorf("failed to set commitment ID: %w", err)
	}

	r.logger.Infow("commitment created",
		"id", model.ID,
		"sid", model.SID,
		"device_id", model.DeviceID,
		"commitment_days", model.CommitmentDays,
	)
	return nil
}

// Update writes the commitment back with an optimistic lock on the version
// column. A stale copy, loaded before a concurrent writer finished its own
// terminal transition, matches zero rows and is rejected, so a terminal
// status is never overwritten.
func (r *TimerCommitmentRepositoryImpl) Update(ctx context.Context, commitment *timer.Commitment) error {
	model, err := r.mapper.ToModel(commitment)
	if err != nil {
		r.logger.Errorw("failed to map commitment entity to model", "error", err)
		return fmt.Errorf("failed to map commitment entity: %w", err)
	}

	loadedVersion := model.Version
	model.Version = loadedVersion + 1

	result := r.db.WithContext(ctx).
		Model(&models.TimerCommitmentModel{}).
		Where("id = ? AND version = ?", model.ID, loadedVersion).
		Select("ActiveKey", "Status", "ProviderDeviceHandle", "ProviderProfileID", "WarningSent", "Version", "UpdatedAt").
		Updates(model)
	if result.Error != nil {
		r.logger.Errorw("failed to update commitment in database", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update commitment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		r.logger.Warnw("commitment update rejected on stale version",
			"id", model.ID,
			"version", loadedVersion,
		)
		return timer.ErrCommitmentConflict
	}

	return commitment.SetVersion(model.Version)
}

// Delete hard-deletes a commitment row. Only the creation rollback path uses
// this; expired commitments stay on record.
func (r *TimerCommitmentRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.TimerCommitmentModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete commitment", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete commitment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return timer.ErrCommitmentNotFound
	}

	r.logger.Infow("commitment deleted", "id", id)
	return nil
}

func (r *TimerCommitmentRepositoryImpl) GetByID(ctx context.Context, id uint) (*timer.Commitment, error) {
	var model models.TimerCommitmentModel

	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get commitment by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get commitment: %w", err)
	}

	return r.toEntity(&model)
}

func (r *TimerCommitmentRepositoryImpl) GetBySID(ctx context.Context, sid string) (*timer.Commitment, error) {
	var model models.TimerCommitmentModel

	if err := r.db.WithContext(ctx).Where("sid = ?", sid).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get commitment by SID", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get commitment: %w", err)
	}

	return r.toEntity(&model)
}

func (r *TimerCommitmentRepositoryImpl) GetActiveByDeviceID(ctx context.Context, deviceID uint) (*timer.Commitment, error) {
	var model models.TimerCommitmentModel

	if err := r.db.WithContext(ctx).
		Where("device_id = ? AND status = ?", deviceID, vo.StatusActive.String()).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get active commitment by device ID", "device_id", deviceID, "error", err)
		return nil, fmt.Errorf("failed to get active commitment: %w", err)
	}

	return r.toEntity(&model)
}

func (r *TimerCommitmentRepositoryImpl) FindExpired(ctx context.Context, now time.Time) ([]*timer.Commitment, error) {
	var modelList []*models.TimerCommitmentModel

	if err := r.db.WithContext(ctx).
		Where("status = ? AND end_at <= ?", vo.StatusActive.String(), now).
		Order("end_at ASC").
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to find expired commitments", "error", err)
		return nil, fmt.Errorf("failed to find expired commitments: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		r.logger.Errorw("failed to map expired commitments", "error", err)
		return nil, fmt.Errorf("failed to map expired commitments: %w", err)
	}

	return entities, nil
}

func (r *TimerCommitmentRepositoryImpl) FindNeedingWarning(ctx context.Context, now time.Time, window time.Duration) ([]*timer.Commitment, error) {
	var modelList []*models.TimerCommitmentModel

	if err := r.db.WithContext(ctx).
		Where("status = ? AND warning_sent = ? AND end_at > ? AND end_at <= ?",
			vo.StatusActive.String(), false, now, now.Add(window)).
		Order("end_at ASC").
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to find commitments needing warning", "error", err)
		return nil, fmt.Errorf("failed to find commitments needing warning: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		r.logger.Errorw("failed to map commitments needing warning", "error", err)
		return nil, fmt.Errorf("failed to map commitments needing warning: %w", err)
	}

	return entities, nil
}

func (r *TimerCommitmentRepositoryImpl) ListByUserID(ctx context.Context, userID uint, filter timer.CommitmentFilter) ([]*timer.Commitment, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.TimerCommitmentModel{}).
		Where("user_id = ?", userID)

	if filter.Status != nil && *filter.Status != "" {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count commitments", "user_id", userID, "error", err)
		return nil, 0, fmt.Errorf("failed to count commitments: %w", err)
	}

	page := filter.Page
	if page < constants.DefaultPage {
		page = constants.DefaultPage
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	var modelList []*models.TimerCommitmentModel
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list commitments", "user_id", userID, "error", err)
		return nil, 0, fmt.Errorf("failed to list commitments: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		r.logger.Errorw("failed to map commitments", "user_id", userID, "error", err)
		return nil, 0, fmt.Errorf("failed to map commitments: %w", err)
	}

	return entities, total, nil
}

func (r *TimerCommitmentRepositoryImpl) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}

	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.TimerCommitmentModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		r.logger.Errorw("failed to count commitments by status", "error", err)
		return nil, fmt.Errorf("failed to count commitments by status: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *TimerCommitmentRepositoryImpl) toEntity(model *models.TimerCommitmentModel) (*timer.Commitment, error) {
	entity, err := r.mapper.ToEntity(model)
	if err != nil {
		r.logger.Errorw("failed to map commitment model to entity", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to map commitment: %w", err)
	}
	return entity, nil
}

package usecases

import (
	"context"
	"fmt"

	"github.com/amzibnewman/altrii-backend/internal/domain/device"
	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

type ListTimerHistoryCommand struct {
	UserID   uint
	Status   *string
	Page     int
	PageSize int
}

type TimerHistoryItem struct {
	Commitment *timer.Commitment
	Device     *device.Device
}

type ListTimerHistoryResult struct {
	Items []*TimerHistoryItem
	Total int64
}

type ListTimerHistoryUseCase struct {
	commitmentRepo timer.CommitmentRepository
	deviceRepo     device.Repository
	logger         logger.Interface
}

func NewListTimerHistoryUseCase(
	commitmentRepo timer.CommitmentRepository,
	deviceRepo device.Repository,
	logger logger.Interface,
) *ListTimerHistoryUseCase {
	return &ListTimerHistoryUseCase{
		commitmentRepo: commitmentRepo,
		deviceRepo:     deviceRepo,
		logger:         logger,
	}
}

func (uc *ListTimerHistoryUseCase) Execute(ctx context.Context, cmd ListTimerHistoryCommand) (*ListTimerHistoryResult, error) {
	commitments, total, err := uc.commitmentRepo.ListByUserID(ctx, cmd.UserID, timer.CommitmentFilter{
		Status:   cmd.Status,
		Page:     cmd.Page,
		PageSize: cmd.PageSize,
	})
	if err != nil {
		uc.logger.Errorw("failed to list commitments", "user_id", cmd.UserID, "error", err)
		return nil, fmt.Errorf("failed to list commitments: %w", err)
	}

	// Pages are small, so devices are resolved per item with a local cache.
	devices := make(map[uint]*device.Device, len(commitments))
	items := make([]*TimerHistoryItem, 0, len(commitments))
	for _, c := range commitments {
		dev, ok := devices[c.DeviceID()]
		if !ok {
			dev, err = uc.deviceRepo.GetByID(ctx, c.DeviceID())
			if err != nil {
				uc.logger.Warnw("failed to resolve device for commitment",
					"commitment_sid", c.SID(),
					"device_id", c.DeviceID(),
					"error", err,
				)
			}
			devices[c.DeviceID()] = dev
		}
		items = append(items, &TimerHistoryItem{Commitment: c, Device: dev})
	}

	return &ListTimerHistoryResult{Items: items, Total: total}, nil
}

package usecases

import (
	"context"
	"fmt"

	"github.com/amzibnewman/altrii-backend/internal/domain/device"
	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	"github.com/amzibnewman/altrii-backend/internal/shared/errors"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

type GetActiveTimerCommand struct {
	UserID    uint
	DeviceSID string
}

type GetActiveTimerResult struct {
	Commitment *timer.Commitment
	Device     *device.Device
	// DeviceStatus is best-effort display data; nil when the provider is
	// unreachable.
	DeviceStatus *timer.DeviceStatus
}

type GetActiveTimerUseCase struct {
	commitmentRepo timer.CommitmentRepository
	deviceRepo     device.Repository
	gateway        timer.ProviderGateway
	logger         logger.Interface
}

func NewGetActiveTimerUseCase(
	commitmentRepo timer.CommitmentRepository,
	deviceRepo device.Repository,
	gateway timer.ProviderGateway,
	logger logger.Interface,
) *GetActiveTimerUseCase {
	return &GetActiveTimerUseCase{
		commitmentRepo: commitmentRepo,
		deviceRepo:     deviceRepo,
		gateway:        gateway,
		logger:         logger,
	}
}

func (uc *GetActiveTimerUseCase) Execute(ctx context.Context, cmd GetActiveTimerCommand) (*GetActiveTimerResult, error) {
	dev, err := uc.deviceRepo.GetBySIDForUser(ctx, cmd.DeviceSID, cmd.UserID)
	if err != nil {
		uc.logger.Errorw("failed to get device", "device_sid", cmd.DeviceSID, "user_id", cmd.UserID, "error", err)
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	if dev == nil {
		return nil, errors.NewNotFoundError("device not found")
	}

	commitment, err := uc.commitmentRepo.GetActiveByDeviceID(ctx, dev.ID())
	if err != nil {
		uc.logger.Errorw("failed to get active commitment", "device_id", dev.ID(), "error", err)
		return nil, fmt.Errorf("failed to get active commitment: %w", err)
	}

	result := &GetActiveTimerResult{Commitment: commitment, Device: dev}
	if commitment == nil {
		return result, nil
	}

	// Provider status never gates the response.
	if dev.IsEnrolled() {
		status, err := uc.gateway.GetDeviceStatus(ctx, dev.ProviderHandle())
		if err != nil {
			uc.logger.Warnw("failed to get device status from provider",
				"device_sid", dev.SID(),
				"error", err,
			)
		} else {
			result.DeviceStatus = status
		}
	}

	return result, nil
}

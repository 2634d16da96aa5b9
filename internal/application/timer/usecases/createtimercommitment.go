package usecases

import (
	"context"
	"fmt"

	"github.com/amzibnewman/altrii-backend/internal/domain/device"
	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	vo "github.com/amzibnewman/altrii-backend/internal/domain/timer/valueobjects"
	"github.com/amzibnewman/altrii-backend/internal/shared/errors"
	"github.com/amzibnewman/altrii-backend/internal/shared/id"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

type CreateTimerCommitmentCommand struct {
	UserID               uint
	DeviceSID            string
	CommitmentDays       int
	ConfirmUnderstanding bool
}

type CreateTimerCommitmentResult struct {
	Commitment *timer.Commitment
	Device     *device.Device
}

// CreateTimerCommitmentUseCase creates a commitment and deploys its
// restriction to the MDM provider. The commitment row is written first so the
// per-device uniqueness constraint acts as the concurrency gate; if provider
// deployment then fails, the row is rolled back with a hard delete.
type CreateTimerCommitmentUseCase struct {
	commitmentRepo timer.CommitmentRepository
	deviceRepo     device.Repository
	tierResolver   timer.TierResolver
	gateway        timer.ProviderGateway
	logger         logger.Interface
}

func NewCreateTimerCommitmentUseCase(
	commitmentRepo timer.CommitmentRepository,
	deviceRepo device.Repository,
	tierResolver timer.TierResolver,
	gateway timer.ProviderGateway,
	logger logger.Interface,
) *CreateTimerCommitmentUseCase {
	return &CreateTimerCommitmentUseCase{
		commitmentRepo: commitmentRepo,
		deviceRepo:     deviceRepo,
		tierResolver:   tierResolver,
		gateway:        gateway,
		logger:         logger,
	}
}

func (uc *CreateTimerCommitmentUseCase) Execute(ctx context.Context, cmd CreateTimerCommitmentCommand) (*CreateTimerCommitmentResult, error) {
	if !cmd.ConfirmUnderstanding {
		return nil, timer.ErrConfirmationRequired
	}

	dev, err := uc.deviceRepo.GetBySIDForUser(ctx, cmd.DeviceSID, cmd.UserID)
	if err != nil {
		uc.logger.Errorw("failed to get device", "device_sid", cmd.DeviceSID, "user_id", cmd.UserID, "error", err)
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	if dev == nil {
		return nil, errors.NewNotFoundError("device not found")
	}
	if !dev.IsEnrolled() {
		return nil, timer.ErrDeviceNotEnrolled
	}

	tier, err := uc.tierResolver.ActiveTierForUser(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	limits := timer.TierLimits(tier)
	if cmd.CommitmentDays < timer.MinCommitmentDays || cmd.CommitmentDays > limits.MaxDays {
		return nil, errors.NewValidationError(fmt.Sprintf("commitment days must be between %d and %d for the %s plan",
			timer.MinCommitmentDays, limits.MaxDays, limits.DisplayName))
	}

	existing, err := uc.commitmentRepo.GetActiveByDeviceID(ctx, dev.ID())
	if err != nil {
		uc.logger.Errorw("failed to check for active commitment", "device_id", dev.ID(), "error", err)
		return nil, fmt.Errorf("failed to check for active commitment: %w", err)
	}
	if existing != nil {
		return nil, timer.ErrActiveCommitmentExists
	}

	sid, err := id.NewTimerCommitmentSID()
	if err != nil {
		uc.logger.Errorw("failed to generate commitment sid", "error", err)
		return nil, fmt.Errorf("failed to generate commitment sid: %w", err)
	}

	commitment, err := timer.NewCommitment(sid, cmd.UserID, dev.ID(), tier, cmd.CommitmentDays)
	if err != nil {
		return nil, fmt.Errorf("failed to create commitment: %w", err)
	}

	// The unique index on (device_id, active_key) closes the race between the
	// check above and this insert.
	if err := uc.commitmentRepo.Create(ctx, commitment); err != nil {
		return nil, err
	}

	profileID, err := uc.gateway.CreateRestrictionProfile(ctx, dev.ProviderHandle(), timer.RestrictionDescriptor{
		CommitmentSID:      commitment.SID(),
		CommitmentDays:     commitment.CommitmentDays(),
		EndAt:              commitment.EndAt(),
		LockedCapabilities: commitment.LockedCapabilities(),
	})
	if err != nil {
		uc.rollback(ctx, commitment, dev.ProviderHandle(), "")
		return nil, fmt.Errorf("failed to create restriction profile: %w", err)
	}

	if err := uc.gateway.DeployProfile(ctx, dev.ProviderHandle(), profileID); err != nil {
		uc.rollback(ctx, commitment, dev.ProviderHandle(), profileID)
		return nil, fmt.Errorf("failed to deploy restriction profile: %w", err)
	}

	ref, err := vo.NewEnforcementRef(dev.ProviderHandle(), profileID)
	if err != nil {
		uc.rollback(ctx, commitment, dev.ProviderHandle(), profileID)
		return nil, fmt.Errorf("failed to build enforcement reference: %w", err)
	}
	if err := commitment.AttachEnforcement(ref); err != nil {
		uc.rollback(ctx, commitment, dev.ProviderHandle(), profileID)
		return nil, fmt.Errorf("failed to attach enforcement reference: %w", err)
	}

	if err := uc.commitmentRepo.Update(ctx, commitment); err != nil {
		uc.rollback(ctx, commitment, dev.ProviderHandle(), profileID)
		return nil, fmt.Errorf("failed to persist enforcement reference: %w", err)
	}

	uc.logger.Infow("timer commitment created",
		"commitment_sid", commitment.SID(),
		"device_sid", dev.SID(),
		"commitment_days", commitment.CommitmentDays(),
		"end_at", commitment.EndAt(),
	)

	return &CreateTimerCommitmentResult{Commitment: commitment, Device: dev}, nil
}

// rollback undoes a half-created commitment: best-effort provider cleanup,
// then removal of the commitment row so the device is free again.
func (uc *CreateTimerCommitmentUseCase) rollback(ctx context.Context, commitment *timer.Commitment, deviceHandle, profileID string) {
	if profileID != "" {
		if err := uc.gateway.RemoveProfile(ctx, deviceHandle, profileID); err != nil {
			uc.logger.Warnw("failed to remove profile during rollback",
				"commitment_sid", commitment.SID(),
				"profile_id", profileID,
				"error", err,
			)
		}
	}

	if err := uc.commitmentRepo.Delete(ctx, commitment.ID()); err != nil {
		uc.logger.Errorw("failed to roll back commitment row",
			"commitment_sid", commitment.SID(),
			"commitment_id", commitment.ID(),
			"error", err,
		)
	}
}

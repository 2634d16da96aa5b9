package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/amzibnewman/altrii-backend/internal/domain/device"
	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	"github.com/amzibnewman/altrii-backend/internal/shared/errors"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

// minCancelReasonLength keeps emergency cancellations deliberate: a
// commitment exists precisely so it cannot be casually undone.
const minCancelReasonLength = 10

type ManualExpireTimerCommand struct {
	UserID           uint
	CommitmentSID    string
	Reason           string
	ConfirmEmergency bool
}

// ManualExpireTimerUseCase is the emergency termination path. It ends a
// commitment before its end time, removing the provider restriction first.
type ManualExpireTimerUseCase struct {
	commitmentRepo timer.CommitmentRepository
	deviceRepo     device.Repository
	gateway        timer.ProviderGateway
	notifier       timer.Notifier
	userDirectory  timer.UserDirectory
	logger         logger.Interface
}

func NewManualExpireTimerUseCase(
	commitmentRepo timer.CommitmentRepository,
	deviceRepo device.Repository,
	gateway timer.ProviderGateway,
	notifier timer.Notifier,
	userDirectory timer.UserDirectory,
	logger logger.Interface,
) *ManualExpireTimerUseCase {
	return &ManualExpireTimerUseCase{
		commitmentRepo: commitmentRepo,
		deviceRepo:     deviceRepo,
		gateway:        gateway,
		notifier:       notifier,
		userDirectory:  userDirectory,
		logger:         logger,
	}
}

func (uc *ManualExpireTimerUseCase) Execute(ctx context.Context, cmd ManualExpireTimerCommand) (*timer.Commitment, error) {
	if !cmd.ConfirmEmergency {
		return nil, errors.NewValidationError("emergency cancellation must be explicitly confirmed")
	}
	if len(strings.TrimSpace(cmd.Reason)) < minCancelReasonLength {
		return nil, errors.NewValidationError(fmt.Sprintf("cancellation reason must be at least %d characters", minCancelReasonLength))
	}

	commitment, err := uc.commitmentRepo.GetBySID(ctx, cmd.CommitmentSID)
	if err != nil {
		uc.logger.Errorw("failed to get commitment", "commitment_sid", cmd.CommitmentSID, "error", err)
		return nil, fmt.Errorf("failed to get commitment: %w", err)
	}
	if commitment == nil || commitment.UserID() != cmd.UserID {
		return nil, timer.ErrCommitmentNotFound
	}
	if commitment.Status().IsTerminal() {
		return nil, timer.ErrInvalidStatusTransition
	}

	// Remove the restriction before touching status. Removal failures are
	// logged but never block the cancellation; the profile is cleaned up
	// manually in that case.
	if ref := commitment.EnforcementRef(); ref != nil {
		if err := uc.gateway.RemoveProfile(ctx, ref.DeviceHandle(), ref.ProfileID()); err != nil {
			uc.logger.Warnw("failed to remove profile during manual expiry",
				"commitment_sid", commitment.SID(),
				"profile_id", ref.ProfileID(),
				"error", err,
			)
		}
	}

	if err := commitment.MarkManuallyExpired(); err != nil {
		return nil, err
	}
	if err := uc.commitmentRepo.Update(ctx, commitment); err != nil {
		uc.logger.Errorw("failed to update manually expired commitment",
			"commitment_sid", commitment.SID(),
			"error", err,
		)
		return nil, fmt.Errorf("failed to update commitment: %w", err)
	}

	uc.sendCompletion(ctx, commitment)

	uc.logger.Infow("timer commitment manually expired",
		"commitment_sid", commitment.SID(),
		"user_id", cmd.UserID,
		"reason", cmd.Reason,
	)

	return commitment, nil
}

// sendCompletion delivers the completion notification. Delivery failures are
// logged only; the cancellation already happened.
func (uc *ManualExpireTimerUseCase) sendCompletion(ctx context.Context, commitment *timer.Commitment) {
	recipient, err := uc.userDirectory.GetRecipient(ctx, commitment.UserID())
	if err != nil || recipient == nil {
		uc.logger.Warnw("failed to resolve cancellation recipient",
			"commitment_sid", commitment.SID(),
			"user_id", commitment.UserID(),
			"error", err,
		)
		return
	}

	deviceName := ""
	if dev, err := uc.deviceRepo.GetByID(ctx, commitment.DeviceID()); err == nil && dev != nil {
		deviceName = dev.Name()
	}

	notification := timer.Notification{
		Email:          recipient.Email,
		FirstName:      recipient.FirstName,
		DeviceName:     deviceName,
		CommitmentDays: commitment.CommitmentDays(),
		StartAt:        commitment.StartAt(),
		EndAt:          commitment.EndAt(),
	}
	if err := uc.notifier.SendTimerCompletion(ctx, notification); err != nil {
		uc.logger.Warnw("failed to send cancellation notification",
			"commitment_sid", commitment.SID(),
			"error", err,
		)
	}
}

package usecases

import (
	"context"
	"fmt"

	"github.com/amzibnewman/altrii-backend/internal/domain/device"
	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	"github.com/amzibnewman/altrii-backend/internal/shared/errors"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

type RequestEnrollmentInvitationCommand struct {
	UserID    uint
	DeviceSID string
}

// RequestEnrollmentInvitationUseCase asks the MDM provider for an enrollment
// invitation so the user can bring an unenrolled device under management.
type RequestEnrollmentInvitationUseCase struct {
	deviceRepo    device.Repository
	userDirectory timer.UserDirectory
	gateway       timer.ProviderGateway
	logger        logger.Interface
}

func NewRequestEnrollmentInvitationUseCase(
	deviceRepo device.Repository,
	userDirectory timer.UserDirectory,
	gateway timer.ProviderGateway,
	logger logger.Interface,
) *RequestEnrollmentInvitationUseCase {
	return &RequestEnrollmentInvitationUseCase{
		deviceRepo:    deviceRepo,
		userDirectory: userDirectory,
		gateway:       gateway,
		logger:        logger,
	}
}

func (uc *RequestEnrollmentInvitationUseCase) Execute(ctx context.Context, cmd RequestEnrollmentInvitationCommand) (*timer.Invitation, error) {
	dev, err := uc.deviceRepo.GetBySIDForUser(ctx, cmd.DeviceSID, cmd.UserID)
	if err != nil {
		uc.logger.Errorw("failed to get device", "device_sid", cmd.DeviceSID, "user_id", cmd.UserID, "error", err)
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	if dev == nil {
		return nil, errors.NewNotFoundError("device not found")
	}
	if dev.IsEnrolled() {
		return nil, errors.NewConflictError("device is already enrolled")
	}

	recipient, err := uc.userDirectory.GetRecipient(ctx, cmd.UserID)
	if err != nil {
		uc.logger.Errorw("failed to get recipient", "user_id", cmd.UserID, "error", err)
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}
	if recipient == nil {
		return nil, errors.NewNotFoundError("user not found")
	}

	invitation, err := uc.gateway.CreateDeviceInvitation(ctx, dev.Name(), recipient.Email)
	if err != nil {
		uc.logger.Errorw("failed to create enrollment invitation",
			"device_sid", dev.SID(),
			"error", err,
		)
		return nil, fmt.Errorf("failed to create enrollment invitation: %w", err)
	}

	uc.logger.Infow("enrollment invitation created",
		"device_sid", dev.SID(),
		"invitation_id", invitation.InvitationID,
	)

	return invitation, nil
}

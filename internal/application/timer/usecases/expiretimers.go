package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/amzibnewman/altrii-backend/internal/domain/device"
	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	"github.com/amzibnewman/altrii-backend/internal/shared/biztime"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

// ExpireTimersUseCase processes commitments whose end time has passed: it
// removes the provider restriction, marks the commitment expired and sends
// the completion notification. Each commitment is handled independently so
// one failure never blocks the rest of the batch.
//
// Provider removal failures are logged and the expiry still proceeds; the
// restriction profile is cleaned up manually in that case. A commitment is
// marked failed only when its status update cannot be persisted.
type ExpireTimersUseCase struct {
	commitmentRepo timer.CommitmentRepository
	deviceRepo     device.Repository
	gateway        timer.ProviderGateway
	notifier       timer.Notifier
	userDirectory  timer.UserDirectory
	callTimeout    time.Duration
	logger         logger.Interface
}

// NewExpireTimersUseCase builds the expiry phase. callTimeout bounds each
// provider and notifier call individually; one slow item cannot eat the
// deadline of the items behind it.
func NewExpireTimersUseCase(
	commitmentRepo timer.CommitmentRepository,
	deviceRepo device.Repository,
	gateway timer.ProviderGateway,
	notifier timer.Notifier,
	userDirectory timer.UserDirectory,
	callTimeout time.Duration,
	logger logger.Interface,
) *ExpireTimersUseCase {
	return &ExpireTimersUseCase{
		commitmentRepo: commitmentRepo,
		deviceRepo:     deviceRepo,
		gateway:        gateway,
		notifier:       notifier,
		userDirectory:  userDirectory,
		callTimeout:    callTimeout,
		logger:         logger,
	}
}

// Execute returns the number of commitments transitioned to expired.
func (uc *ExpireTimersUseCase) Execute(ctx context.Context) (int, error) {
	now := biztime.NowUTC()

	due, err := uc.commitmentRepo.FindExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired commitments: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	uc.logger.Infow("found due commitments to expire", "count", len(due))

	expiredCount := 0
	for _, commitment := range due {
		if uc.expireOne(ctx, commitment) {
			expiredCount++
		}
	}

	return expiredCount, nil
}

func (uc *ExpireTimersUseCase) expireOne(ctx context.Context, commitment *timer.Commitment) bool {
	if ref := commitment.EnforcementRef(); ref != nil {
		removeCtx, cancel := context.WithTimeout(ctx, uc.callTimeout)
		err := uc.gateway.RemoveProfile(removeCtx, ref.DeviceHandle(), ref.ProfileID())
		cancel()
		if err != nil {
			uc.logger.Warnw("failed to remove profile during expiry",
				"commitment_sid", commitment.SID(),
				"profile_id", ref.ProfileID(),
				"error", err,
			)
		}
	}

	if err := commitment.MarkExpired(); err != nil {
		uc.logger.Warnw("failed to mark commitment expired",
			"commitment_sid", commitment.SID(),
			"current_status", commitment.Status().String(),
			"error", err,
		)
		return false
	}

	if err := uc.commitmentRepo.Update(ctx, commitment); err != nil {
		uc.logger.Errorw("failed to persist expired commitment, flagging for review",
			"commitment_sid", commitment.SID(),
			"error", err,
		)
		uc.flagFailed(ctx, commitment)
		return false
	}

	uc.sendCompletion(ctx, commitment)

	uc.logger.Infow("timer commitment expired",
		"commitment_sid", commitment.SID(),
		"device_id", commitment.DeviceID(),
	)
	return true
}

// flagFailed is the last resort when the expiry update cannot be persisted.
// The failed status takes the commitment out of future sweeps so it does not
// wedge the batch forever.
func (uc *ExpireTimersUseCase) flagFailed(ctx context.Context, commitment *timer.Commitment) {
	fresh, err := uc.commitmentRepo.GetByID(ctx, commitment.ID())
	if err != nil || fresh == nil {
		uc.logger.Errorw("failed to reload commitment for failure flag",
			"commitment_id", commitment.ID(),
			"error", err,
		)
		return
	}

	if err := fresh.MarkFailed(); err != nil {
		return
	}
	if err := uc.commitmentRepo.Update(ctx, fresh); err != nil {
		uc.logger.Errorw("failed to flag commitment as failed",
			"commitment_sid", fresh.SID(),
			"error", err,
		)
	}
}

// sendCompletion delivers the completion notification. Delivery failures are
// logged only; the commitment is already expired.
func (uc *ExpireTimersUseCase) sendCompletion(ctx context.Context, commitment *timer.Commitment) {
	recipient, err := uc.userDirectory.GetRecipient(ctx, commitment.UserID())
	if err != nil || recipient == nil {
		uc.logger.Warnw("failed to resolve completion recipient",
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

	sendCtx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()
	if err := uc.notifier.SendTimerCompletion(sendCtx, notification); err != nil {
		uc.logger.Warnw("failed to send completion notification",
			"commitment_sid", commitment.SID(),
			"error", err,
		)
	}
}

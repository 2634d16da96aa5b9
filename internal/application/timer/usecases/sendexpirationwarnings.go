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

// SendExpirationWarningsUseCase notifies users whose commitments end within
// the warning window. The warning flag is only set after a successful send,
// so a failed delivery is retried on the next sweep.
type SendExpirationWarningsUseCase struct {
	commitmentRepo timer.CommitmentRepository
	deviceRepo     device.Repository
	notifier       timer.Notifier
	userDirectory  timer.UserDirectory
	window         time.Duration
	callTimeout    time.Duration
	logger         logger.Interface
}

// NewSendExpirationWarningsUseCase builds the warning phase. callTimeout
// bounds each notifier call individually.
func NewSendExpirationWarningsUseCase(
	commitmentRepo timer.CommitmentRepository,
	deviceRepo device.Repository,
	notifier timer.Notifier,
	userDirectory timer.UserDirectory,
	window time.Duration,
	callTimeout time.Duration,
	logger logger.Interface,
) *SendExpirationWarningsUseCase {
	return &SendExpirationWarningsUseCase{
		commitmentRepo: commitmentRepo,
		deviceRepo:     deviceRepo,
		notifier:       notifier,
		userDirectory:  userDirectory,
		window:         window,
		callTimeout:    callTimeout,
		logger:         logger,
	}
}

// Execute returns the number of warnings delivered.
func (uc *SendExpirationWarningsUseCase) Execute(ctx context.Context) (int, error) {
	now := biztime.NowUTC()

	commitments, err := uc.commitmentRepo.FindNeedingWarning(ctx, now, uc.window)
	if err != nil {
		return 0, fmt.Errorf("failed to find commitments needing warning: %w", err)
	}
	if len(commitments) == 0 {
		return 0, nil
	}

	uc.logger.Infow("found commitments needing expiration warning", "count", len(commitments))

	sentCount := 0
	for _, commitment := range commitments {
		if uc.warnOne(ctx, commitment, now) {
			sentCount++
		}
	}

	return sentCount, nil
}

func (uc *SendExpirationWarningsUseCase) warnOne(ctx context.Context, commitment *timer.Commitment, now time.Time) bool {
	recipient, err := uc.userDirectory.GetRecipient(ctx, commitment.UserID())
	if err != nil || recipient == nil {
		uc.logger.Warnw("failed to resolve warning recipient",
			"commitment_sid", commitment.SID(),
			"user_id", commitment.UserID(),
			"error", err,
		)
		return false
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
		HoursRemaining: commitment.HoursRemaining(now),
	}
	sendCtx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()
	if err := uc.notifier.SendExpirationWarning(sendCtx, notification); err != nil {
		uc.logger.Warnw("failed to send expiration warning, will retry next sweep",
			"commitment_sid", commitment.SID(),
			"error", err,
		)
		return false
	}

	if err := commitment.MarkWarningSent(); err != nil {
		uc.logger.Warnw("failed to mark warning sent",
			"commitment_sid", commitment.SID(),
			"error", err,
		)
		return true
	}
	if err := uc.commitmentRepo.Update(ctx, commitment); err != nil {
		uc.logger.Errorw("failed to persist warning flag",
			"commitment_sid", commitment.SID(),
			"error", err,
		)
	}

	return true
}

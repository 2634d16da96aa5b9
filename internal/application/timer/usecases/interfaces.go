package usecases

import (
	"context"

	"github.com/amzibnewman/altrii-backend/internal/application/timer/dto"
	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
)

type CreateTimerCommitmentExecutor interface {
	Execute(ctx context.Context, cmd CreateTimerCommitmentCommand) (*CreateTimerCommitmentResult, error)
}

type GetActiveTimerExecutor interface {
	Execute(ctx context.Context, cmd GetActiveTimerCommand) (*GetActiveTimerResult, error)
}

type ManualExpireTimerExecutor interface {
	Execute(ctx context.Context, cmd ManualExpireTimerCommand) (*timer.Commitment, error)
}

type GetTimerLimitsExecutor interface {
	Execute(ctx context.Context, userID uint) (timer.Tier, error)
}

type ListTimerHistoryExecutor interface {
	Execute(ctx context.Context, cmd ListTimerHistoryCommand) (*ListTimerHistoryResult, error)
}

type GetTimerStatsExecutor interface {
	Execute(ctx context.Context) (*dto.TimerStatsDTO, error)
}

type RequestEnrollmentInvitationExecutor interface {
	Execute(ctx context.Context, cmd RequestEnrollmentInvitationCommand) (*timer.Invitation, error)
}

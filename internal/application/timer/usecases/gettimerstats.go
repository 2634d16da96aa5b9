package usecases

import (
	"context"
	"fmt"

	"github.com/amzibnewman/altrii-backend/internal/application/timer/dto"
	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	vo "github.com/amzibnewman/altrii-backend/internal/domain/timer/valueobjects"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

// GetTimerStatsUseCase aggregates commitment counts for operational
// dashboards.
type GetTimerStatsUseCase struct {
	commitmentRepo timer.CommitmentRepository
	logger         logger.Interface
}

func NewGetTimerStatsUseCase(
	commitmentRepo timer.CommitmentRepository,
	logger logger.Interface,
) *GetTimerStatsUseCase {
	return &GetTimerStatsUseCase{
		commitmentRepo: commitmentRepo,
		logger:         logger,
	}
}

func (uc *GetTimerStatsUseCase) Execute(ctx context.Context) (*dto.TimerStatsDTO, error) {
	counts, err := uc.commitmentRepo.CountByStatus(ctx)
	if err != nil {
		uc.logger.Errorw("failed to count commitments by status", "error", err)
		return nil, fmt.Errorf("failed to count commitments: %w", err)
	}

	stats := &dto.TimerStatsDTO{
		Active:          counts[vo.StatusActive.String()],
		Expired:         counts[vo.StatusExpired.String()],
		ManuallyExpired: counts[vo.StatusManuallyExpired.String()],
		Failed:          counts[vo.StatusFailed.String()],
	}
	stats.Total = stats.Active + stats.Expired + stats.ManuallyExpired + stats.Failed
	return stats, nil
}

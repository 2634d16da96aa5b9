package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	timerUsecases "github.com/amzibnewman/altrii-backend/internal/application/timer/usecases"
	sharedConfig "github.com/amzibnewman/altrii-backend/internal/shared/config"
	"github.com/amzibnewman/altrii-backend/internal/shared/goroutine"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

// TimerCommitmentScheduler drives the periodic commitment sweep:
// expiring due commitments first, then sending expiration warnings.
//
// Overlap is prevented with a compare-and-swap guard: a trigger that arrives
// while a sweep is still running is dropped, not queued. A slow provider can
// therefore never stack sweeps behind itself.
type TimerCommitmentScheduler struct {
	expireTimersUC *timerUsecases.ExpireTimersUseCase
	sendWarningsUC *timerUsecases.SendExpirationWarningsUseCase
	logger         logger.Interface

	interval     time.Duration
	startupDelay time.Duration

	running  atomic.Bool
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewTimerCommitmentScheduler(
	expireTimersUC *timerUsecases.ExpireTimersUseCase,
	sendWarningsUC *timerUsecases.SendExpirationWarningsUseCase,
	cfg *sharedConfig.SweeperConfig,
	logger logger.Interface,
) *TimerCommitmentScheduler {
	return &TimerCommitmentScheduler{
		expireTimersUC: expireTimersUC,
		sendWarningsUC: sendWarningsUC,
		logger:         logger,
		interval:       cfg.Interval(),
		startupDelay:   cfg.StartupDelay(),
		stopChan:       make(chan struct{}),
	}
}

// Start starts the scheduler.
func (s *TimerCommitmentScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting timer commitment scheduler",
		"interval", s.interval,
		"startup_delay", s.startupDelay,
	)

	s.wg.Add(1)
	goroutine.SafeGo(s.logger, "timer-commitment-sweeper", func() {
		defer s.wg.Done()
		s.runLoop(ctx)
	})
}

// Stop stops the scheduler gracefully, waiting for an in-flight sweep.
func (s *TimerCommitmentScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping timer commitment scheduler")
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("timer commitment scheduler stopped")
	})
}

// TriggerNow runs a sweep immediately if none is in flight. It reports
// whether the sweep ran.
func (s *TimerCommitmentScheduler) TriggerNow(ctx context.Context) bool {
	return s.sweep(ctx)
}

func (s *TimerCommitmentScheduler) runLoop(ctx context.Context) {
	// Short delay so a deploy-time restart does not hammer the provider
	// before the rest of the process is up.
	select {
	case <-time.After(s.startupDelay):
	case <-ctx.Done():
		return
	case <-s.stopChan:
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("timer commitment scheduler stopped due to context cancellation")
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs one expiry pass followed by one warning pass. Returns false if
// another sweep was already in flight. The sweep itself carries no deadline;
// the usecases bound each provider and notifier call on their own.
func (s *TimerCommitmentScheduler) sweep(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debugw("skipping timer sweep, previous sweep still running")
		return false
	}
	defer s.running.Store(false)

	startTime := time.Now()

	expiredCount, err := s.expireTimersUC.Execute(ctx)
	if err != nil {
		s.logger.Errorw("failed to process due commitments",
			"error", err,
			"duration", time.Since(startTime),
		)
	} else if expiredCount > 0 {
		s.logger.Infow("due commitments expired",
			"count", expiredCount,
			"duration", time.Since(startTime),
		)
	}

	warnedCount, err := s.sendWarningsUC.Execute(ctx)
	if err != nil {
		s.logger.Errorw("failed to send expiration warnings",
			"error", err,
			"duration", time.Since(startTime),
		)
	} else if warnedCount > 0 {
		s.logger.Infow("expiration warnings sent",
			"count", warnedCount,
			"duration", time.Since(startTime),
		)
	}

	return true
}

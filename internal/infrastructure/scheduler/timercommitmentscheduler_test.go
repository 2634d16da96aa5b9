package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amzibnewman/altrii-backend/internal/application/timer/testutil"
	timerUsecases "github.com/amzibnewman/altrii-backend/internal/application/timer/usecases"
	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	sharedConfig "github.com/amzibnewman/altrii-backend/internal/shared/config"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

// blockingRepo holds FindExpired open until released so tests can observe a
// sweep in flight.
type blockingRepo struct {
	*testutil.MockCommitmentRepository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingRepo() *blockingRepo {
	return &blockingRepo{
		MockCommitmentRepository: testutil.NewMockCommitmentRepository(),
		entered:                  make(chan struct{}),
		release:                  make(chan struct{}),
	}
}

func (r *blockingRepo) FindExpired(ctx context.Context, now time.Time) ([]*timer.Commitment, error) {
	r.once.Do(func() { close(r.entered) })
	select {
	case <-r.release:
	case <-ctx.Done():
	}
	return nil, nil
}

func newTestScheduler(repo timer.CommitmentRepository) *TimerCommitmentScheduler {
	log := logger.NewLogger()
	devices := testutil.NewMockDeviceRepository()
	gateway := testutil.NewMockProviderGateway()
	notifier := testutil.NewMockNotifier()
	directory := testutil.NewMockUserDirectory()

	expireUC := timerUsecases.NewExpireTimersUseCase(repo, devices, gateway, notifier, directory, time.Second, log)
	warnUC := timerUsecases.NewSendExpirationWarningsUseCase(repo, devices, notifier, directory, 24*time.Hour, time.Second, log)

	cfg := &sharedConfig.SweeperConfig{
		IntervalMinutes:     5,
		StartupDelaySeconds: 1,
		CallTimeoutSeconds:  15,
		WarningWindowHours:  24,
	}
	return NewTimerCommitmentScheduler(expireUC, warnUC, cfg, log)
}

func TestScheduler_OverlappingTriggerIsDropped(t *testing.T) {
	repo := newBlockingRepo()
	s := newTestScheduler(repo)

	firstDone := make(chan bool)
	go func() {
		firstDone <- s.TriggerNow(context.Background())
	}()

	// wait until the first sweep is inside the repository call
	select {
	case <-repo.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first sweep never started")
	}

	// a second trigger while the first is in flight must be dropped
	assert.False(t, s.TriggerNow(context.Background()))

	close(repo.release)
	assert.True(t, <-firstDone)

	// once the first sweep finishes the guard is clear again
	assert.True(t, s.TriggerNow(context.Background()))
}

func TestScheduler_StopWaitsForInflightSweep(t *testing.T) {
	repo := newBlockingRepo()
	s := newTestScheduler(repo)

	go func() {
		s.TriggerNow(context.Background())
	}()

	select {
	case <-repo.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep never started")
	}

	s.Start(context.Background())
	close(repo.release)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestScheduler_IdleSweepTouchesNothing(t *testing.T) {
	repo := testutil.NewMockCommitmentRepository()
	gateway := testutil.NewMockProviderGateway()
	notifier := testutil.NewMockNotifier()
	log := logger.NewLogger()

	expireUC := timerUsecases.NewExpireTimersUseCase(repo, testutil.NewMockDeviceRepository(), gateway, notifier, testutil.NewMockUserDirectory(), time.Second, log)
	warnUC := timerUsecases.NewSendExpirationWarningsUseCase(repo, testutil.NewMockDeviceRepository(), notifier, testutil.NewMockUserDirectory(), 24*time.Hour, time.Second, log)
	cfg := &sharedConfig.SweeperConfig{}
	s := NewTimerCommitmentScheduler(expireUC, warnUC, cfg, log)

	require.True(t, s.TriggerNow(context.Background()))
	assert.Zero(t, gateway.RemoveCallCount())
	assert.Empty(t, notifier.Completions)
	assert.Empty(t, notifier.Warnings)
}

package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amzibnewman/altrii-backend/internal/application/timer/testutil"
	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	vo "github.com/amzibnewman/altrii-backend/internal/domain/timer/valueobjects"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

var nextSeedID uint

// seedCommitment builds a persisted-looking active commitment with a
// controlled end time and stores it in the mock repository.
func seedCommitment(t *testing.T, repo *testutil.MockCommitmentRepository, sid string, deviceID uint, endAt time.Time, warningSent bool) *timer.Commitment {
	t.Helper()

	ref, err := vo.NewEnforcementRef("jamf-dev-1", "ref-1")
	require.NoError(t, err)

	nextSeedID++
	start := endAt.Add(-14 * 24 * time.Hour)
	c, err := timer.ReconstructCommitment(
		nextSeedID, sid, 10, deviceID, timer.TierMonthly, 14,
		start, endAt, vo.StatusActive, ref, warningSent,
		vo.DefaultLockedCapabilities(), 1, start, start,
	)
	require.NoError(t, err)
	repo.Seed(c)
	return c
}

type expireFixture struct {
	repo      *testutil.MockCommitmentRepository
	devices   *testutil.MockDeviceRepository
	gateway   *testutil.MockProviderGateway
	notifier  *testutil.MockNotifier
	directory *testutil.MockUserDirectory
	uc        *ExpireTimersUseCase
}

func newExpireFixture(t *testing.T) *expireFixture {
	t.Helper()

	f := &expireFixture{
		repo:      testutil.NewMockCommitmentRepository(),
		devices:   testutil.NewMockDeviceRepository(),
		gateway:   testutil.NewMockProviderGateway(),
		notifier:  testutil.NewMockNotifier(),
		directory: testutil.NewMockUserDirectory(),
	}
	f.devices.AddDevice(newEnrolledDevice(t, 1, "dev_abc", 10))
	f.directory.AddRecipient(10, &timer.Recipient{Email: "user@example.com", FirstName: "Sam"})
	f.uc = NewExpireTimersUseCase(f.repo, f.devices, f.gateway, f.notifier, f.directory, time.Second, logger.NewLogger())
	return f
}

func TestExpireTimers_DueCommitmentExpired(t *testing.T) {
	f := newExpireFixture(t)
	now := time.Now().UTC()
	c := seedCommitment(t, f.repo, "tc_due1", 1, now.Add(-time.Hour), true)

	count, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := f.repo.GetByID(context.Background(), c.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.StatusExpired, stored.Status())

	// restriction removed exactly once, for the stored enforcement ref
	require.Len(t, f.gateway.RemoveCalls, 1)
	assert.Equal(t, "jamf-dev-1/ref-1", f.gateway.RemoveCalls[0])

	// completion notification delivered
	require.Len(t, f.notifier.Completions, 1)
	assert.Equal(t, "user@example.com", f.notifier.Completions[0].Email)
	assert.Equal(t, "MacBook Pro", f.notifier.Completions[0].DeviceName)
}

func TestExpireTimers_IdleSweepMakesNoCalls(t *testing.T) {
	f := newExpireFixture(t)
	now := time.Now().UTC()
	seedCommitment(t, f.repo, "tc_future", 1, now.Add(48*time.Hour), false)

	count, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, f.gateway.RemoveCallCount())
	assert.Empty(t, f.notifier.Completions)
}

func TestExpireTimers_ProviderFailureDoesNotBlockExpiry(t *testing.T) {
	f := newExpireFixture(t)
	now := time.Now().UTC()
	c := seedCommitment(t, f.repo, "tc_provfail", 1, now.Add(-time.Hour), true)
	f.gateway.RemoveError = errors.New("provider unreachable")

	count, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := f.repo.GetByID(context.Background(), c.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.StatusExpired, stored.Status())
	require.Len(t, f.notifier.Completions, 1)
}

func TestExpireTimers_NotificationFailureDoesNotRevertExpiry(t *testing.T) {
	f := newExpireFixture(t)
	now := time.Now().UTC()
	c := seedCommitment(t, f.repo, "tc_mailfail", 1, now.Add(-time.Hour), true)
	f.notifier.CompletionError = errors.New("smtp down")

	count, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := f.repo.GetByID(context.Background(), c.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.StatusExpired, stored.Status())
}

func TestExpireTimers_SlowProviderDoesNotStarveLaterItems(t *testing.T) {
	f := newExpireFixture(t)
	f.uc = NewExpireTimersUseCase(f.repo, f.devices, f.gateway, f.notifier, f.directory, 50*time.Millisecond, logger.NewLogger())

	now := time.Now().UTC()
	first := seedCommitment(t, f.repo, "tc_slow1", 1, now.Add(-3*time.Hour), true)
	second := seedCommitment(t, f.repo, "tc_slow2", 2, now.Add(-2*time.Hour), true)
	third := seedCommitment(t, f.repo, "tc_slow3", 3, now.Add(-time.Hour), true)

	// every removal hangs past its own deadline
	f.gateway.RemoveDelay = 10 * time.Second

	count, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, f.gateway.RemoveCallCount())

	for _, c := range []*timer.Commitment{first, second, third} {
		stored, err := f.repo.GetByID(context.Background(), c.ID())
		require.NoError(t, err)
		assert.Equal(t, vo.StatusExpired, stored.Status())
	}
	assert.Len(t, f.notifier.Completions, 3)
}

func TestExpireTimers_BatchIsolation(t *testing.T) {
	f := newExpireFixture(t)
	now := time.Now().UTC()
	seedCommitment(t, f.repo, "tc_batch1", 1, now.Add(-2*time.Hour), true)
	seedCommitment(t, f.repo, "tc_batch2", 2, now.Add(-time.Hour), true)

	count, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, f.gateway.RemoveCallCount())
}

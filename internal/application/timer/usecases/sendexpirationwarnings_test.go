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
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

type warningFixture struct {
	repo      *testutil.MockCommitmentRepository
	devices   *testutil.MockDeviceRepository
	notifier  *testutil.MockNotifier
	directory *testutil.MockUserDirectory
	uc        *SendExpirationWarningsUseCase
}

func newWarningFixture(t *testing.T) *warningFixture {
	t.Helper()

	f := &warningFixture{
		repo:      testutil.NewMockCommitmentRepository(),
		devices:   testutil.NewMockDeviceRepository(),
		notifier:  testutil.NewMockNotifier(),
		directory: testutil.NewMockUserDirectory(),
	}
	f.devices.AddDevice(newEnrolledDevice(t, 1, "dev_abc", 10))
	f.directory.AddRecipient(10, &timer.Recipient{Email: "user@example.com", FirstName: "Sam"})
	f.uc = NewSendExpirationWarningsUseCase(f.repo, f.devices, f.notifier, f.directory, 24*time.Hour, time.Second, logger.NewLogger())
	return f
}

func TestSendExpirationWarnings_WithinWindow(t *testing.T) {
	f := newWarningFixture(t)
	now := time.Now().UTC()
	c := seedCommitment(t, f.repo, "tc_warn1", 1, now.Add(10*time.Hour), false)

	count, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, f.notifier.Warnings, 1)
	warning := f.notifier.Warnings[0]
	assert.Equal(t, "user@example.com", warning.Email)
	assert.Equal(t, 10, warning.HoursRemaining)

	stored, err := f.repo.GetByID(context.Background(), c.ID())
	require.NoError(t, err)
	assert.True(t, stored.WarningSent())
}

func TestSendExpirationWarnings_SkipsOutsideWindowAndWarned(t *testing.T) {
	f := newWarningFixture(t)
	now := time.Now().UTC()

	seedCommitment(t, f.repo, "tc_far", 1, now.Add(48*time.Hour), false)
	seedCommitment(t, f.repo, "tc_done", 2, now.Add(10*time.Hour), true)

	count, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, f.notifier.Warnings)
}

func TestSendExpirationWarnings_DeliveryFailureRetriesNextSweep(t *testing.T) {
	f := newWarningFixture(t)
	now := time.Now().UTC()
	c := seedCommitment(t, f.repo, "tc_retry", 1, now.Add(10*time.Hour), false)
	f.notifier.WarningError = errors.New("smtp down")

	count, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	// flag stays clear so the next sweep picks it up again
	stored, err := f.repo.GetByID(context.Background(), c.ID())
	require.NoError(t, err)
	assert.False(t, stored.WarningSent())

	f.notifier.WarningError = nil
	count, err = f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

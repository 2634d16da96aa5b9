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

type manualExpireFixture struct {
	repo      *testutil.MockCommitmentRepository
	devices   *testutil.MockDeviceRepository
	gateway   *testutil.MockProviderGateway
	notifier  *testutil.MockNotifier
	directory *testutil.MockUserDirectory
	uc        *ManualExpireTimerUseCase
}

func newManualExpireFixture(t *testing.T) *manualExpireFixture {
	t.Helper()

	f := &manualExpireFixture{
		repo:      testutil.NewMockCommitmentRepository(),
		devices:   testutil.NewMockDeviceRepository(),
		gateway:   testutil.NewMockProviderGateway(),
		notifier:  testutil.NewMockNotifier(),
		directory: testutil.NewMockUserDirectory(),
	}
	f.devices.AddDevice(newEnrolledDevice(t, 1, "dev_abc", 10))
	f.directory.AddRecipient(10, &timer.Recipient{Email: "user@example.com", FirstName: "Sam"})
	f.uc = NewManualExpireTimerUseCase(f.repo, f.devices, f.gateway, f.notifier, f.directory, logger.NewLogger())
	return f
}

func TestManualExpireTimer_Success(t *testing.T) {
	f := newManualExpireFixture(t)
	now := time.Now().UTC()
	c := seedCommitment(t, f.repo, "tc_manual1", 1, now.Add(7*24*time.Hour), false)

	result, err := f.uc.Execute(context.Background(), ManualExpireTimerCommand{
		UserID:           10,
		CommitmentSID:    "tc_manual1",
		Reason:           "device needed for urgent work travel",
		ConfirmEmergency: true,
	})
	require.NoError(t, err)
	assert.Equal(t, vo.StatusManuallyExpired, result.Status())

	stored, err := f.repo.GetByID(context.Background(), c.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.StatusManuallyExpired, stored.Status())
	assert.Equal(t, 1, f.gateway.RemoveCallCount())
	require.Len(t, f.notifier.Completions, 1)
	assert.Equal(t, "user@example.com", f.notifier.Completions[0].Email)
}

func TestManualExpireTimer_NotifierFailureDoesNotBlock(t *testing.T) {
	f := newManualExpireFixture(t)
	now := time.Now().UTC()
	c := seedCommitment(t, f.repo, "tc_manual6", 1, now.Add(7*24*time.Hour), false)
	f.notifier.CompletionError = errors.New("smtp unavailable")

	result, err := f.uc.Execute(context.Background(), ManualExpireTimerCommand{
		UserID:           10,
		CommitmentSID:    "tc_manual6",
		Reason:           "cancellation while the mail relay is down",
		ConfirmEmergency: true,
	})
	require.NoError(t, err)
	assert.Equal(t, vo.StatusManuallyExpired, result.Status())

	stored, err := f.repo.GetByID(context.Background(), c.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.StatusManuallyExpired, stored.Status())
}

func TestManualExpireTimer_ConfirmationRequired(t *testing.T) {
	f := newManualExpireFixture(t)
	now := time.Now().UTC()
	seedCommitment(t, f.repo, "tc_manual7", 1, now.Add(7*24*time.Hour), false)

	_, err := f.uc.Execute(context.Background(), ManualExpireTimerCommand{
		UserID:        10,
		CommitmentSID: "tc_manual7",
		Reason:        "a perfectly valid reason without the flag",
	})
	assert.Error(t, err)
	assert.Zero(t, f.gateway.RemoveCallCount())
}

func TestManualExpireTimer_ReasonTooShort(t *testing.T) {
	f := newManualExpireFixture(t)
	now := time.Now().UTC()
	seedCommitment(t, f.repo, "tc_manual2", 1, now.Add(7*24*time.Hour), false)

	_, err := f.uc.Execute(context.Background(), ManualExpireTimerCommand{
		UserID:           10,
		CommitmentSID:    "tc_manual2",
		Reason:           "because",
		ConfirmEmergency: true,
	})
	assert.Error(t, err)
	assert.Zero(t, f.gateway.RemoveCallCount())
}

func TestManualExpireTimer_OwnershipEnforced(t *testing.T) {
	f := newManualExpireFixture(t)
	now := time.Now().UTC()
	seedCommitment(t, f.repo, "tc_manual3", 1, now.Add(7*24*time.Hour), false)

	_, err := f.uc.Execute(context.Background(), ManualExpireTimerCommand{
		UserID:           99,
		CommitmentSID:    "tc_manual3",
		Reason:           "not my commitment but trying anyway",
		ConfirmEmergency: true,
	})
	assert.ErrorIs(t, err, timer.ErrCommitmentNotFound)
}

func TestManualExpireTimer_TerminalCommitmentRejected(t *testing.T) {
	f := newManualExpireFixture(t)
	now := time.Now().UTC()
	c := seedCommitment(t, f.repo, "tc_manual4", 1, now.Add(7*24*time.Hour), false)
	require.NoError(t, c.MarkExpired())

	_, err := f.uc.Execute(context.Background(), ManualExpireTimerCommand{
		UserID:           10,
		CommitmentSID:    "tc_manual4",
		Reason:           "trying to cancel an already finished timer",
		ConfirmEmergency: true,
	})
	assert.ErrorIs(t, err, timer.ErrInvalidStatusTransition)
}

func TestManualExpireTimer_RemovalFailureDoesNotBlock(t *testing.T) {
	f := newManualExpireFixture(t)
	now := time.Now().UTC()
	c := seedCommitment(t, f.repo, "tc_manual5", 1, now.Add(7*24*time.Hour), false)
	f.gateway.RemoveError = errors.New("provider unreachable")

	result, err := f.uc.Execute(context.Background(), ManualExpireTimerCommand{
		UserID:           10,
		CommitmentSID:    "tc_manual5",
		Reason:           "urgent cancellation despite provider outage",
		ConfirmEmergency: true,
	})
	require.NoError(t, err)
	assert.Equal(t, vo.StatusManuallyExpired, result.Status())

	stored, err := f.repo.GetByID(context.Background(), c.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.StatusManuallyExpired, stored.Status())
}

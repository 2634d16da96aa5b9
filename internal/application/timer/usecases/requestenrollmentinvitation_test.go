package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amzibnewman/altrii-backend/internal/application/timer/testutil"
	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

type invitationFixture struct {
	devices   *testutil.MockDeviceRepository
	directory *testutil.MockUserDirectory
	gateway   *testutil.MockProviderGateway
	uc        *RequestEnrollmentInvitationUseCase
}

func newInvitationFixture(t *testing.T) *invitationFixture {
	t.Helper()

	f := &invitationFixture{
		devices:   testutil.NewMockDeviceRepository(),
		directory: testutil.NewMockUserDirectory(),
		gateway:   testutil.NewMockProviderGateway(),
	}
	f.directory.AddRecipient(10, &timer.Recipient{Email: "user@example.com", FirstName: "Sam"})
	f.uc = NewRequestEnrollmentInvitationUseCase(f.devices, f.directory, f.gateway, logger.NewLogger())
	return f
}

func TestRequestEnrollmentInvitation_Success(t *testing.T) {
	f := newInvitationFixture(t)
	f.devices.AddDevice(newUnenrolledDevice(t, 1, "dev_abc", 10))

	invitation, err := f.uc.Execute(context.Background(), RequestEnrollmentInvitationCommand{
		UserID:    10,
		DeviceSID: "dev_abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "inv-1", invitation.InvitationID)
	assert.NotEmpty(t, invitation.EnrollmentURL)
	require.Len(t, f.gateway.InvitationCalls, 1)
}

func TestRequestEnrollmentInvitation_AlreadyEnrolled(t *testing.T) {
	f := newInvitationFixture(t)
	f.devices.AddDevice(newEnrolledDevice(t, 1, "dev_abc", 10))

	_, err := f.uc.Execute(context.Background(), RequestEnrollmentInvitationCommand{
		UserID:    10,
		DeviceSID: "dev_abc",
	})
	assert.Error(t, err)
	assert.Empty(t, f.gateway.InvitationCalls)
}

func TestRequestEnrollmentInvitation_DeviceNotFound(t *testing.T) {
	f := newInvitationFixture(t)

	_, err := f.uc.Execute(context.Background(), RequestEnrollmentInvitationCommand{
		UserID:    10,
		DeviceSID: "dev_missing",
	})
	assert.Error(t, err)
}

func TestRequestEnrollmentInvitation_ProviderFailure(t *testing.T) {
	f := newInvitationFixture(t)
	f.devices.AddDevice(newUnenrolledDevice(t, 1, "dev_abc", 10))
	f.gateway.InvitationError = errors.New("jamf unavailable")

	_, err := f.uc.Execute(context.Background(), RequestEnrollmentInvitationCommand{
		UserID:    10,
		DeviceSID: "dev_abc",
	})
	assert.Error(t, err)
}

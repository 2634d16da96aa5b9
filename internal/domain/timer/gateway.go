package timer

import (
	"context"
	"time"

	vo "github.com/amzibnewman/altrii-backend/internal/domain/timer/valueobjects"
)

// RestrictionDescriptor carries the fields the provider needs to build the
// restriction artifact for a commitment.
type RestrictionDescriptor struct {
	CommitmentSID      string
	CommitmentDays     int
	EndAt              time.Time
	LockedCapabilities vo.LockedCapabilities
}

// Invitation is a provider-side device enrollment invitation.
type Invitation struct {
	InvitationID   string
	EnrollmentURL  string
	InvitationCode string
}

// DeviceStatus is the provider's view of a device. It is read-only display
// data: it may be stale or unavailable and is never used for lifecycle
// decisions.
type DeviceStatus struct {
	Online    bool
	Compliant bool
	LastSeen  time.Time
}

// ProviderGateway is the external device-management provider contract.
// Every call is a best-effort remote operation; no local transaction spans
// across it. CreateRestrictionProfile is not idempotent: callers must not
// call it twice for the same commitment without cleanup in between.
// RemoveProfile must be safe to call on an already-removed profile.
type ProviderGateway interface {
	CreateDeviceInvitation(ctx context.Context, deviceName, ownerEmail string) (*Invitation, error)
	CreateRestrictionProfile(ctx context.Context, deviceHandle string, descriptor RestrictionDescriptor) (profileID string, err error)
	DeployProfile(ctx context.Context, deviceHandle, profileID string) error
	RemoveProfile(ctx context.Context, deviceHandle, profileID string) error
	GetDeviceStatus(ctx context.Context, deviceHandle string) (*DeviceStatus, error)
}

package device

import "context"

// Repository is the device registry contract consumed by the commitment
// orchestrator.
type Repository interface {
	GetByID(ctx context.Context, id uint) (*Device, error)
	// GetBySIDForUser returns the device only if it is owned by the user.
	GetBySIDForUser(ctx context.Context, sid string, userID uint) (*Device, error)
	Update(ctx context.Context, device *Device) error
}

// Package device models the enrolled devices timer commitments attach to.
package device

import (
	"fmt"
	"time"

	"github.com/amzibnewman/altrii-backend/internal/shared/biztime"
)

// Device is a user-registered device profile. A device must be enrolled with
// the MDM provider (have a provider handle) before any commitment can be
// created for it.
type Device struct {
	id             uint
	sid            string
	userID         uint
	name           string
	providerHandle string
	createdAt      time.Time
	updatedAt      time.Time
}

// NewDevice creates a device profile. The provider handle is empty until the
// device completes MDM enrollment.
func NewDevice(sid string, userID uint, name string) (*Device, error) {
	if sid == "" {
		return nil, fmt.Errorf("device SID is required")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if name == "" {
		return nil, fmt.Errorf("device name is required")
	}

	now := biztime.NowUTC()
	return &Device{
		sid:       sid,
		userID:    userID,
		name:      name,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructDevice reconstructs a device from persistence.
func ReconstructDevice(
	id uint,
	sid string,
	userID uint,
	name, providerHandle string,
	createdAt, updatedAt time.Time,
) (*Device, error) {
	if id == 0 {
		return nil, fmt.Errorf("device ID cannot be zero")
	}
	if sid == "" {
		return nil, fmt.Errorf("device SID is required")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}

	return &Device{
		id:             id,
		sid:            sid,
		userID:         userID,
		name:           name,
		providerHandle: providerHandle,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

func (d *Device) ID() uint               { return d.id }
func (d *Device) SID() string            { return d.sid }
func (d *Device) UserID() uint           { return d.userID }
func (d *Device) Name() string           { return d.name }
func (d *Device) ProviderHandle() string { return d.providerHandle }
func (d *Device) CreatedAt() time.Time   { return d.createdAt }
func (d *Device) UpdatedAt() time.Time   { return d.updatedAt }

// IsEnrolled reports whether the device has completed MDM enrollment.
func (d *Device) IsEnrolled() bool {
	return d.providerHandle != ""
}

// SetID sets the device ID (only for persistence layer use)
func (d *Device) SetID(id uint) error {
	if d.id != 0 {
		return fmt.Errorf("device ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("device ID cannot be zero")
	}
	d.id = id
	return nil
}

// MarkEnrolled records the provider-side device handle after enrollment.
func (d *Device) MarkEnrolled(providerHandle string) error {
	if providerHandle == "" {
		return fmt.Errorf("provider handle is required")
	}
	d.providerHandle = providerHandle
	d.updatedAt = biztime.NowUTC()
	return nil
}

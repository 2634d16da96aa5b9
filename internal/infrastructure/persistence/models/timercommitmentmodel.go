package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/amzibnewman/altrii-backend/internal/shared/constants"
)

// TimerCommitmentModel represents the database persistence model for timer
// commitments. This is the anti-corruption layer between domain and database.
//
// ActiveKey is "active" while the commitment is active and NULL once terminal;
// together with DeviceID it forms a unique index so the database itself
// enforces at most one active commitment per device.
type TimerCommitmentModel struct {
	ID                   uint    `gorm:"primarykey"`
	SID                  string  `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: tc_xxx"`
	UserID               uint    `gorm:"not null;index:idx_user_commitment"`
	DeviceID             uint    `gorm:"not null;uniqueIndex:idx_device_active,priority:1"`
	ActiveKey            *string `gorm:"size:10;uniqueIndex:idx_device_active,priority:2"`
	Tier                 string  `gorm:"not null;size:20"`
	CommitmentDays       int     `gorm:"not null"`
	StartAt              time.Time `gorm:"not null"`
	EndAt                time.Time `gorm:"not null;index:idx_end_at"`
	Status               string    `gorm:"not null;size:20;index:idx_status"`
	ProviderDeviceHandle *string   `gorm:"size:100"`
	ProviderProfileID    *string   `gorm:"size:100"`
	WarningSent          bool      `gorm:"not null;default:false"`
	LockedCapabilities   datatypes.JSON
	Version              int `gorm:"not null;default:1"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName specifies the table name for GORM
func (TimerCommitmentModel) TableName() string {
	return constants.TableTimerCommitments
}

// BeforeCreate hook for GORM
func (m *TimerCommitmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.Version == 0 {
		m.Version = 1
	}
	return nil
}

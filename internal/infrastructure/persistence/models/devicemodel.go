package models

import (
	"time"

	"github.com/amzibnewman/altrii-backend/internal/shared/constants"
)

// DeviceModel represents the database persistence model for enrolled devices.
type DeviceModel struct {
	ID             uint   `gorm:"primarykey"`
	SID            string `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: dev_xxx"`
	UserID         uint   `gorm:"not null;index:idx_user_device"`
	Name           string `gorm:"not null;size:100"`
	ProviderHandle string `gorm:"size:100"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for GORM
func (DeviceModel) TableName() string {
	return constants.TableDevices
}

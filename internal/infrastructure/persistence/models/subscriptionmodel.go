package models

import (
	"time"

	"github.com/amzibnewman/altrii-backend/internal/shared/constants"
)

// SubscriptionModel carries the billing fields the commitment policy needs:
// the plan type bounds the maximum commitment duration.
type SubscriptionModel struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"not null;index:idx_user_subscription"`
	PlanType  string `gorm:"not null;size:20"`
	Status    string `gorm:"not null;size:20;index:idx_subscription_status"`
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}

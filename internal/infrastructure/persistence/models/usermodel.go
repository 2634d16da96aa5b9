package models

import (
	"time"

	"github.com/amzibnewman/altrii-backend/internal/shared/constants"
)

// UserModel carries the account fields the timer lifecycle needs for
// notifications. Account management itself lives in another service.
type UserModel struct {
	ID        uint   `gorm:"primarykey"`
	Email     string `gorm:"uniqueIndex;not null;size:255"`
	FirstName string `gorm:"size:100"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (UserModel) TableName() string {
	return constants.TableUsers
}

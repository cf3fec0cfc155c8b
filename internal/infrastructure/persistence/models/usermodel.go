package models

import (
	"time"

	"github.com/formcraft-io/formcraft/internal/shared/constants"
)

// UserModel represents the database persistence model for users
type UserModel struct {
	ID                 uint    `gorm:"primarykey"`
	Email              string  `gorm:"uniqueIndex;not null;size:255"`
	Name               string  `gorm:"size:100"`
	PasswordHash       string  `gorm:"size:255"`
	Role               string  `gorm:"not null;size:20;default:user"`
	ProviderCustomerID *string `gorm:"uniqueIndex;size:100"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (UserModel) TableName() string {
	return constants.TableUsers
}

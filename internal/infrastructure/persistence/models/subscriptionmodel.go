package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/formcraft-io/formcraft/internal/shared/constants"
)

// SubscriptionModel represents the database persistence model for subscriptions
// This is the anti-corruption layer between domain and database
type SubscriptionModel struct {
	ID                     uint      `gorm:"primarykey"`
	SID                    string    `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: sub_xxx"`
	UserID                 uint      `gorm:"not null;index:idx_user_subscription,priority:1"`
	PlanID                 uint      `gorm:"not null;index:idx_plan_subscription"`
	Status                 string    `gorm:"not null;size:20;index:idx_user_subscription,priority:2"`
	StartDate              time.Time `gorm:"not null"`
	EndDate                *time.Time
	ProviderSubscriptionID *string    `gorm:"uniqueIndex;size:100"`
	SuspendedAt            *time.Time `gorm:"index"`
	CancelledAt            *time.Time
	Version                int `gorm:"not null;default:1"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}

// BeforeCreate hook for GORM
func (s *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}

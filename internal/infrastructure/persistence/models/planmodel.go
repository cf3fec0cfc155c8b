package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/formcraft-io/formcraft/internal/shared/constants"
)

// PlanModel represents the database persistence model for plans
type PlanModel struct {
	ID                     uint            `gorm:"primarykey"`
	Slug                   string          `gorm:"uniqueIndex;not null;size:50"`
	Name                   string          `gorm:"not null;size:100"`
	Price                  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Currency               string          `gorm:"not null;size:3"`
	ProviderProductID      *string         `gorm:"size:100"`
	ProviderPriceID        *string         `gorm:"uniqueIndex;size:100"`
	MaxForms               int64           `gorm:"not null"`
	MaxSubmissionsPerMonth int64           `gorm:"not null"`
	MaxStorageMb           int64           `gorm:"not null"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (PlanModel) TableName() string {
	return constants.TablePlans
}

type FeatureModel struct {
	ID   uint   `gorm:"primarykey"`
	Key  string `gorm:"column:feature_key;uniqueIndex;not null;size:50"`
	Name string `gorm:"not null;size:100"`
}

func (FeatureModel) TableName() string {
	return constants.TableFeatures
}

type PlanFeatureModel struct {
	PlanID    uint   `gorm:"primaryKey"`
	FeatureID uint   `gorm:"primaryKey"`
	Value     string `gorm:"size:100"`
	Position  int    `gorm:"not null;default:0"`
}

func (PlanFeatureModel) TableName() string {
	return constants.TablePlanFeatures
}

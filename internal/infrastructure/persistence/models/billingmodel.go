package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/formcraft-io/formcraft/internal/shared/constants"
)

// QuotaStatusModel holds one row per user and month.
type QuotaStatusModel struct {
	ID              uint    `gorm:"primarykey"`
	UserID          uint    `gorm:"not null;uniqueIndex:uk_user_month,priority:1"`
	MonthKey        string  `gorm:"not null;size:7;uniqueIndex:uk_user_month,priority:2"`
	FormCount       int64   `gorm:"not null;default:0"`
	SubmissionCount int64   `gorm:"not null;default:0"`
	StorageUsedMb   float64 `gorm:"not null;default:0"`
	Notified80      bool    `gorm:"column:notified80;not null;default:false"`
	Notified100     bool    `gorm:"column:notified100;not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (QuotaStatusModel) TableName() string {
	return constants.TableQuotaStatus
}

// WebhookEventModel is the idempotency ledger for provider deliveries.
type WebhookEventModel struct {
	ID              uint   `gorm:"primarykey"`
	Provider        string `gorm:"not null;size:20;uniqueIndex:uk_provider_event,priority:1"`
	ProviderEventID string `gorm:"not null;size:100;uniqueIndex:uk_provider_event,priority:2"`
	EventType       string `gorm:"not null;size:100"`
	Payload         datatypes.JSON
	Status          string `gorm:"not null;size:20;index"`
	ProcessingError string `gorm:"type:text"`
	ProcessedAt     *time.Time
	CreatedAt       time.Time
}

func (WebhookEventModel) TableName() string {
	return constants.TableWebhookEvents
}

type PaymentFailureModel struct {
	ID                uint   `gorm:"primarykey"`
	SubscriptionID    uint   `gorm:"not null;index"`
	ProviderInvoiceID string `gorm:"not null;size:100;uniqueIndex:uk_invoice_attempt,priority:1"`
	Attempt           int64  `gorm:"not null;uniqueIndex:uk_invoice_attempt,priority:2"`
	Stage             string `gorm:"not null;size:30"`
	RetryAt           *time.Time
	DowngradeAt       *time.Time
	CreatedAt         time.Time
}

func (PaymentFailureModel) TableName() string {
	return constants.TablePaymentFailures
}

package billing

import "time"

// PaymentFailure records one dunning step so redelivered failure events
// for the same invoice attempt do not repeat side effects.
type PaymentFailure struct {
	ID                uint
	SubscriptionID    uint
	ProviderInvoiceID string
	Attempt           int64
	Stage             Stage
	RetryAt           *time.Time
	DowngradeAt       *time.Time
	CreatedAt         time.Time
}

func NewPaymentFailure(subscriptionID uint, invoiceID string, d Decision) *PaymentFailure {
	return &PaymentFailure{
		SubscriptionID:    subscriptionID,
		ProviderInvoiceID: invoiceID,
		Attempt:           d.Attempt,
		Stage:             d.Stage,
		RetryAt:           d.RetryAt,
		DowngradeAt:       d.DowngradeAt,
		CreatedAt:         time.Now().UTC(),
	}
}

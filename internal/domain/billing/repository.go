package billing

import "context"

// WebhookEventRepository is the idempotency ledger for provider events.
type WebhookEventRepository interface {
	// Create fails with a duplicate error when the event id was already recorded.
	Create(ctx context.Context, e *WebhookEvent) error
	GetByProviderEventID(ctx context.Context, provider, eventID string) (*WebhookEvent, error)
	Update(ctx context.Context, e *WebhookEvent) error
}

// PaymentFailureRepository stores dunning steps, unique per invoice and attempt.
type PaymentFailureRepository interface {
	// Create fails with a duplicate error when the invoice attempt was already handled.
	Create(ctx context.Context, f *PaymentFailure) error
	ListBySubscription(ctx context.Context, subscriptionID uint) ([]*PaymentFailure, error)
}

package billing

import (
	"time"

	"github.com/formcraft-io/formcraft/internal/domain/subscription"
)

// Provider event types the webhook dispatcher understands.
const (
	EventSubscriptionCreated     = "customer.subscription.created"
	EventSubscriptionUpdated     = "customer.subscription.updated"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
	EventInvoicePaymentFailed    = "invoice.payment_failed"
	EventInvoicePaymentSucceeded = "invoice.payment_succeeded"
	EventInvoicePaid             = "invoice.paid"
)

// ProviderEvent is a verified webhook event. Exactly one of Subscription
// or Invoice is set for the types above.
type ProviderEvent struct {
	ID           string
	Type         string
	Payload      []byte
	Subscription *subscription.ProviderSubscription
	Invoice      *ProviderInvoice
}

type WebhookEventStatus string

const (
	WebhookEventReceived  WebhookEventStatus = "received"
	WebhookEventProcessed WebhookEventStatus = "processed"
	WebhookEventIgnored   WebhookEventStatus = "ignored"
	WebhookEventFailed    WebhookEventStatus = "failed"
)

// WebhookEvent is the idempotency ledger row for one provider event id.
type WebhookEvent struct {
	id              uint
	provider        string
	providerEventID string
	eventType       string
	payload         []byte
	status          WebhookEventStatus
	processingError string
	processedAt     *time.Time
	createdAt       time.Time
}

func NewWebhookEvent(provider string, ev ProviderEvent) *WebhookEvent {
	return &WebhookEvent{
		provider:        provider,
		providerEventID: ev.ID,
		eventType:       ev.Type,
		payload:         ev.Payload,
		status:          WebhookEventReceived,
		createdAt:       time.Now().UTC(),
	}
}

func ReconstructWebhookEvent(id uint, provider, providerEventID, eventType string, payload []byte, status WebhookEventStatus, processingError string, processedAt *time.Time, createdAt time.Time) *WebhookEvent {
	return &WebhookEvent{
		id:              id,
		provider:        provider,
		providerEventID: providerEventID,
		eventType:       eventType,
		payload:         payload,
		status:          status,
		processingError: processingError,
		processedAt:     processedAt,
		createdAt:       createdAt,
	}
}

func (e *WebhookEvent) ID() uint                   { return e.id }
func (e *WebhookEvent) Provider() string           { return e.provider }
func (e *WebhookEvent) ProviderEventID() string    { return e.providerEventID }
func (e *WebhookEvent) EventType() string          { return e.eventType }
func (e *WebhookEvent) Payload() []byte            { return e.payload }
func (e *WebhookEvent) Status() WebhookEventStatus { return e.status }
func (e *WebhookEvent) ProcessingError() string    { return e.processingError }
func (e *WebhookEvent) ProcessedAt() *time.Time    { return e.processedAt }
func (e *WebhookEvent) CreatedAt() time.Time       { return e.createdAt }

func (e *WebhookEvent) SetID(id uint) {
	e.id = id
}

// IsSettled reports whether a redelivery of this event must be skipped.
func (e *WebhookEvent) IsSettled() bool {
	return e.status == WebhookEventProcessed || e.status == WebhookEventIgnored
}

func (e *WebhookEvent) MarkProcessed() {
	now := time.Now().UTC()
	e.status = WebhookEventProcessed
	e.processingError = ""
	e.processedAt = &now
}

func (e *WebhookEvent) MarkIgnored() {
	now := time.Now().UTC()
	e.status = WebhookEventIgnored
	e.processedAt = &now
}

func (e *WebhookEvent) MarkFailed(err error) {
	e.status = WebhookEventFailed
	if err != nil {
		e.processingError = err.Error()
	}
}

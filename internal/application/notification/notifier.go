// Package notification defines the outbound user notification port.
package notification

import "context"

// Template names understood by every Notifier implementation.
const (
	TemplateQuotaWarning       = "quota_warning"
	TemplateQuotaReached       = "quota_reached"
	TemplatePaymentFailed      = "payment_failed"
	TemplatePaymentUrgent      = "payment_urgent"
	TemplateSuspensionImminent = "suspension_imminent"
	TemplateSubscriptionPaused = "subscription_suspended"
	TemplateReactivated        = "subscription_reactivated"
	TemplateDowngraded         = "subscription_downgraded"
	TemplateNewSubmission      = "new_submission"
)

// Message is a templated notification addressed to one user.
type Message struct {
	To       string
	Name     string
	Template string
	Data     map[string]any
}

// Notifier delivers messages. Callers treat send failures as non-fatal.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

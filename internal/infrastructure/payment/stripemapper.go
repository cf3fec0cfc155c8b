package payment

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"

	"github.com/formcraft-io/formcraft/internal/domain/billing"
	"github.com/formcraft-io/formcraft/internal/domain/subscription"
)

// toProviderEvent decodes the object of the event types the dispatcher
// handles. Other types pass through with only id and type set.
func toProviderEvent(event stripe.Event, payload []byte) (*billing.ProviderEvent, error) {
	ev := &billing.ProviderEvent{
		ID:      event.ID,
		Type:    string(event.Type),
		Payload: payload,
	}
	if event.Data == nil {
		return ev, nil
	}

	switch ev.Type {
	case billing.EventSubscriptionCreated, billing.EventSubscriptionUpdated, billing.EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("failed to decode subscription of event %s: %w", event.ID, err)
		}
		ev.Subscription = toProviderSubscription(&sub)
	case billing.EventInvoicePaymentFailed, billing.EventInvoicePaymentSucceeded, billing.EventInvoicePaid:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("failed to decode invoice of event %s: %w", event.ID, err)
		}
		ev.Invoice = toProviderInvoice(&inv)
	}
	return ev, nil
}

func toProviderSubscription(sub *stripe.Subscription) *subscription.ProviderSubscription {
	ps := &subscription.ProviderSubscription{
		ID:                 sub.ID,
		Status:             string(sub.Status),
		CurrentPeriodStart: unixUTC(sub.CurrentPeriodStart),
		CurrentPeriodEnd:   unixUTC(sub.CurrentPeriodEnd),
		Metadata:           sub.Metadata,
	}
	if sub.Customer != nil {
		ps.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		ps.PriceID = sub.Items.Data[0].Price.ID
	}
	if ps.Metadata == nil {
		ps.Metadata = map[string]string{}
	}
	return ps
}

func toProviderInvoice(inv *stripe.Invoice) *billing.ProviderInvoice {
	pi := &billing.ProviderInvoice{
		ID:                 inv.ID,
		Status:             string(inv.Status),
		AttemptCount:       inv.AttemptCount,
		AmountDue:          inv.AmountDue,
		Currency:           string(inv.Currency),
		NextPaymentAttempt: unixUTC(inv.NextPaymentAttempt),
	}
	if inv.Subscription != nil {
		pi.ProviderSubscriptionID = inv.Subscription.ID
	}
	if inv.Customer != nil {
		pi.CustomerID = inv.Customer.ID
	}
	return pi
}

func unixUTC(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/application/payment/paymentgateway"
	"github.com/formcraft-io/formcraft/internal/domain/billing"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// Webhook results reported to metrics and callers.
const (
	WebhookResultProcessed = "processed"
	WebhookResultIgnored   = "ignored"
	WebhookResultDuplicate = "duplicate"
	WebhookResultFailed    = "failed"
	WebhookResultRejected  = "rejected"
)

type eventHandler func(ctx context.Context, ev *billing.ProviderEvent) (handled bool, err error)

// HandleWebhookUseCase verifies a provider delivery, records it in the
// event ledger and dispatches it. Deliveries of an already settled event
// id are acknowledged without side effects.
type HandleWebhookUseCase struct {
	provider  paymentgateway.PaymentProvider
	eventRepo billing.WebhookEventRepository
	lifecycle SubscriptionLifecycle
	dunning   *DunningService
	handlers  map[string]eventHandler
	metrics   Metrics
	logger    logger.Interface
}

func NewHandleWebhookUseCase(
	provider paymentgateway.PaymentProvider,
	eventRepo billing.WebhookEventRepository,
	lifecycle SubscriptionLifecycle,
	dunning *DunningService,
	logger logger.Interface,
) *HandleWebhookUseCase {
	uc := &HandleWebhookUseCase{
		provider:  provider,
		eventRepo: eventRepo,
		lifecycle: lifecycle,
		dunning:   dunning,
		metrics:   nopMetrics{},
		logger:    logger,
	}
	uc.handlers = map[string]eventHandler{
		billing.EventSubscriptionCreated:     uc.handleSubscriptionCreated,
		billing.EventSubscriptionUpdated:     uc.handleSubscriptionUpsert,
		billing.EventSubscriptionDeleted:     uc.handleSubscriptionDeleted,
		billing.EventInvoicePaymentFailed:    uc.handlePaymentFailed,
		billing.EventInvoicePaymentSucceeded: uc.handleInvoicePaid,
		billing.EventInvoicePaid:             uc.handleInvoicePaid,
	}
	return uc
}

func (uc *HandleWebhookUseCase) SetMetrics(m Metrics) {
	if m != nil {
		uc.metrics = m
	}
}

// Execute returns the processing result. Errors are AppErrors when the
// delivery was rejected; any other error means the provider should retry.
func (uc *HandleWebhookUseCase) Execute(ctx context.Context, payload []byte, signature string) (string, error) {
	ev, err := uc.provider.ParseWebhookEvent(payload, signature)
	if errors.Is(err, paymentgateway.ErrMalformedEvent) {
		uc.logger.Errorw("rejected signed webhook with undecodable payload", "error", err, "provider", uc.provider.Name())
		uc.metrics.WebhookEvent("unknown", WebhookResultRejected)
		return WebhookResultRejected, apperrors.NewBadRequestError("malformed webhook payload", err.Error())
	}
	if err != nil {
		uc.logger.Warnw("rejected webhook with invalid signature", "error", err, "provider", uc.provider.Name())
		uc.metrics.WebhookEvent("unknown", WebhookResultRejected)
		return WebhookResultRejected, apperrors.NewSignatureInvalidError("invalid webhook signature")
	}

	record, err := uc.claim(ctx, ev)
	if err != nil {
		uc.metrics.WebhookEvent(ev.Type, WebhookResultFailed)
		return WebhookResultFailed, err
	}
	if record.IsSettled() {
		uc.logger.Infow("duplicate webhook event skipped", "event_id", ev.ID, "type", ev.Type)
		uc.metrics.WebhookEvent(ev.Type, WebhookResultDuplicate)
		return WebhookResultDuplicate, nil
	}

	result := WebhookResultProcessed
	handler, ok := uc.handlers[ev.Type]
	var handleErr error
	if ok {
		var handled bool
		handled, handleErr = handler(ctx, ev)
		if handleErr == nil && !handled {
			result = WebhookResultIgnored
		}
	} else {
		uc.logger.Debugw("webhook event type not handled", "event_id", ev.ID, "type", ev.Type)
		result = WebhookResultIgnored
	}

	switch {
	case handleErr != nil:
		result = WebhookResultFailed
		record.MarkFailed(handleErr)
		uc.logger.Errorw("failed to process webhook event", "error", handleErr, "event_id", ev.ID, "type", ev.Type)
	case result == WebhookResultIgnored:
		record.MarkIgnored()
	default:
		record.MarkProcessed()
	}

	if err := uc.eventRepo.Update(ctx, record); err != nil {
		uc.logger.Errorw("failed to update webhook event", "error", err, "event_id", ev.ID)
		if handleErr == nil {
			handleErr = fmt.Errorf("failed to update webhook event: %w", err)
			result = WebhookResultFailed
		}
	}

	uc.metrics.WebhookEvent(ev.Type, result)
	if handleErr != nil {
		return result, handleErr
	}
	uc.logger.Infow("webhook event handled", "event_id", ev.ID, "type", ev.Type, "result", result)
	return result, nil
}

// claim returns the ledger row for the event, creating it on first sight.
func (uc *HandleWebhookUseCase) claim(ctx context.Context, ev *billing.ProviderEvent) (*billing.WebhookEvent, error) {
	provider := uc.provider.Name()
	existing, err := uc.eventRepo.GetByProviderEventID(ctx, provider, ev.ID)
	if err != nil {
		uc.logger.Errorw("failed to get webhook event", "error", err, "event_id", ev.ID)
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	record := billing.NewWebhookEvent(provider, *ev)
	if err := uc.eventRepo.Create(ctx, record); err != nil {
		if !apperrors.IsDuplicateError(err) {
			uc.logger.Errorw("failed to record webhook event", "error", err, "event_id", ev.ID)
			return nil, fmt.Errorf("failed to record webhook event: %w", err)
		}
		existing, err = uc.eventRepo.GetByProviderEventID(ctx, provider, ev.ID)
		if err != nil || existing == nil {
			return nil, fmt.Errorf("failed to reload webhook event %s: %w", ev.ID, err)
		}
		return existing, nil
	}
	return record, nil
}

func (uc *HandleWebhookUseCase) handleSubscriptionCreated(ctx context.Context, ev *billing.ProviderEvent) (bool, error) {
	if ev.Subscription == nil {
		return false, nil
	}
	if _, err := uc.lifecycle.CreateFromProviderEvent(ctx, *ev.Subscription); err != nil {
		return false, err
	}
	return true, nil
}

// handleSubscriptionUpsert updates the local mirror, creating it when the
// created event was never seen.
func (uc *HandleWebhookUseCase) handleSubscriptionUpsert(ctx context.Context, ev *billing.ProviderEvent) (bool, error) {
	if ev.Subscription == nil {
		return false, nil
	}
	if _, err := uc.lifecycle.SyncProviderSubscription(ctx, *ev.Subscription); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *HandleWebhookUseCase) handleSubscriptionDeleted(ctx context.Context, ev *billing.ProviderEvent) (bool, error) {
	if ev.Subscription == nil {
		return false, nil
	}
	return uc.lifecycle.CancelFromProvider(ctx, ev.Subscription.ID)
}

func (uc *HandleWebhookUseCase) handlePaymentFailed(ctx context.Context, ev *billing.ProviderEvent) (bool, error) {
	if ev.Invoice == nil || ev.Invoice.ProviderSubscriptionID == "" {
		return false, nil
	}
	if err := uc.dunning.HandlePaymentFailed(ctx, *ev.Invoice); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *HandleWebhookUseCase) handleInvoicePaid(ctx context.Context, ev *billing.ProviderEvent) (bool, error) {
	if ev.Invoice == nil || ev.Invoice.ProviderSubscriptionID == "" {
		return false, nil
	}
	return uc.dunning.ReactivateSubscription(ctx, ev.Invoice.ProviderSubscriptionID)
}

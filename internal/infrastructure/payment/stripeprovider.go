// Package payment holds the payment provider adapters.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/formcraft-io/formcraft/internal/application/payment/paymentgateway"
	"github.com/formcraft-io/formcraft/internal/domain/billing"
	"github.com/formcraft-io/formcraft/internal/shared/config"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

const providerName = "stripe"

var _ paymentgateway.PaymentProvider = (*StripeProvider)(nil)

// StripeProvider implements the payment port on top of an injected Stripe
// API client. Mutating calls carry a fresh idempotency key so that network
// retries inside the SDK never double-apply.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
	logger        logger.Interface
}

// NewStripeProvider builds a provider with the default API backend.
func NewStripeProvider(cfg config.StripeConfig, logger logger.Interface) *StripeProvider {
	return NewStripeProviderWithClient(client.New(cfg.SecretKey, nil), cfg.WebhookSecret, logger)
}

func NewStripeProviderWithClient(api *client.API, webhookSecret string, logger logger.Interface) *StripeProvider {
	return &StripeProvider{
		api:           api,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

func (p *StripeProvider) Name() string {
	return providerName
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, req paymentgateway.CreateCustomerRequest) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(req.Email),
	}
	if req.Name != "" {
		params.Name = stripe.String(req.Name)
	}
	params.AddMetadata("user_id", strconv.FormatUint(uint64(req.UserID), 10))
	withRequest(ctx, &params.Params)

	c, err := p.api.Customers.New(params)
	if err != nil {
		p.logger.Errorw("failed to create stripe customer", "error", err, "user_id", req.UserID)
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	return c.ID, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req paymentgateway.CheckoutRequest) (*paymentgateway.Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(req.CustomerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	if req.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(req.ClientReferenceID)
	}
	if len(req.Metadata) > 0 {
		// Metadata is copied onto the subscription so that the created
		// webhook can be matched back to the local user.
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: req.Metadata,
		}
		for k, v := range req.Metadata {
			params.AddMetadata(k, v)
		}
	}
	withRequest(ctx, &params.Params)

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		p.logger.Errorw("failed to create checkout session", "error", err, "customer_id", req.CustomerID, "price_id", req.PriceID)
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &paymentgateway.Session{ID: sess.ID, URL: sess.URL}, nil
}

func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*paymentgateway.Session, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	withRequest(ctx, &params.Params)

	sess, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		p.logger.Errorw("failed to create portal session", "error", err, "customer_id", customerID)
		return nil, fmt.Errorf("failed to create portal session: %w", err)
	}
	return &paymentgateway.Session{ID: sess.ID, URL: sess.URL}, nil
}

// PauseSubscription stops collection and voids invoices raised while paused.
func (p *StripeProvider) PauseSubscription(ctx context.Context, providerSubscriptionID string) error {
	params := &stripe.SubscriptionParams{
		PauseCollection: &stripe.SubscriptionPauseCollectionParams{
			Behavior: stripe.String(string(stripe.SubscriptionPauseCollectionBehaviorVoid)),
		},
	}
	withRequest(ctx, &params.Params)

	if _, err := p.api.Subscriptions.Update(providerSubscriptionID, params); err != nil {
		p.logger.Errorw("failed to pause stripe subscription", "error", err, "provider_subscription_id", providerSubscriptionID)
		return fmt.Errorf("failed to pause subscription: %w", err)
	}
	return nil
}

func (p *StripeProvider) ResumeSubscription(ctx context.Context, providerSubscriptionID string) error {
	params := &stripe.SubscriptionParams{}
	// An empty value unsets pause_collection.
	params.AddExtra("pause_collection", "")
	withRequest(ctx, &params.Params)

	if _, err := p.api.Subscriptions.Update(providerSubscriptionID, params); err != nil {
		p.logger.Errorw("failed to resume stripe subscription", "error", err, "provider_subscription_id", providerSubscriptionID)
		return fmt.Errorf("failed to resume subscription: %w", err)
	}
	return nil
}

// CancelSubscription is idempotent: an already cancelled or missing
// subscription is not an error.
func (p *StripeProvider) CancelSubscription(ctx context.Context, providerSubscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{}
	withRequest(ctx, &params.Params)

	if _, err := p.api.Subscriptions.Cancel(providerSubscriptionID, params); err != nil {
		if isResourceMissing(err) {
			p.logger.Warnw("stripe subscription already gone", "provider_subscription_id", providerSubscriptionID)
			return nil
		}
		p.logger.Errorw("failed to cancel stripe subscription", "error", err, "provider_subscription_id", providerSubscriptionID)
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	return nil
}

// GetInvoice returns (nil, nil) when the invoice does not exist.
func (p *StripeProvider) GetInvoice(ctx context.Context, invoiceID string) (*billing.ProviderInvoice, error) {
	params := &stripe.InvoiceParams{}
	params.Context = ctx

	inv, err := p.api.Invoices.Get(invoiceID, params)
	if err != nil {
		if isResourceMissing(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return toProviderInvoice(inv), nil
}

func (p *StripeProvider) PayInvoice(ctx context.Context, invoiceID string) (*billing.ProviderInvoice, error) {
	params := &stripe.InvoicePayParams{}
	withRequest(ctx, &params.Params)

	inv, err := p.api.Invoices.Pay(invoiceID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to pay invoice: %w", err)
	}
	return toProviderInvoice(inv), nil
}

func (p *StripeProvider) ParseWebhookEvent(payload []byte, signature string) (*billing.ProviderEvent, error) {
	if p.webhookSecret == "" {
		return nil, errors.New("webhook secret not configured")
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("failed to verify webhook: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", paymentgateway.ErrMalformedEvent, err)
	}
	ev, err := toProviderEvent(event, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", paymentgateway.ErrMalformedEvent, err)
	}
	return ev, nil
}

// isSignatureError reports whether ConstructEvent failed on the signature
// header rather than on decoding a verified body.
func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}

func withRequest(ctx context.Context, params *stripe.Params) {
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())
}

func isResourceMissing(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.Code == stripe.ErrorCodeResourceMissing
	}
	return false
}

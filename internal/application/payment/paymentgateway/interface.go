// Package paymentgateway defines the payment provider port used by
// checkout, dunning and webhook handling.
package paymentgateway

import (
	"context"
	"errors"

	"github.com/formcraft-io/formcraft/internal/domain/billing"
)

// ErrMalformedEvent is wrapped by ParseWebhookEvent when the signature is
// valid but the payload cannot be decoded.
var ErrMalformedEvent = errors.New("malformed webhook event")

// PaymentProvider is implemented by the provider adapter. Every call that
// reaches the network takes a context and returns a wrapped provider error.
type PaymentProvider interface {
	Name() string
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (string, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*Session, error)
	PauseSubscription(ctx context.Context, providerSubscriptionID string) error
	ResumeSubscription(ctx context.Context, providerSubscriptionID string) error
	CancelSubscription(ctx context.Context, providerSubscriptionID string) error
	GetInvoice(ctx context.Context, invoiceID string) (*billing.ProviderInvoice, error)
	PayInvoice(ctx context.Context, invoiceID string) (*billing.ProviderInvoice, error)
	// ParseWebhookEvent verifies the signature header and decodes the payload.
	ParseWebhookEvent(payload []byte, signature string) (*billing.ProviderEvent, error)
}

type CreateCustomerRequest struct {
	Email  string
	Name   string
	UserID uint
}

type CheckoutRequest struct {
	CustomerID        string
	PriceID           string
	SuccessURL        string
	CancelURL         string
	ClientReferenceID string
	Metadata          map[string]string
}

// Session is a hosted provider page the user is redirected to.
type Session struct {
	ID  string
	URL string
}

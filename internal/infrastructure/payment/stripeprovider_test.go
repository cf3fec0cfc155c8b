package payment

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/formcraft-io/formcraft/internal/application/payment/paymentgateway"
	"github.com/formcraft-io/formcraft/internal/domain/billing"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

const testWebhookSecret = "whsec_test_secret"

type recordedRequest struct {
	method         string
	path           string
	form           url.Values
	idempotencyKey string
}

type fakeStripe struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeStripe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(raw))

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		method:         r.Method,
		path:           r.URL.Path,
		form:           form,
		idempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	status, body := f.status, f.body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (f *fakeStripe) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func newTestProvider(t *testing.T, status int, body string) (*StripeProvider, *fakeStripe) {
	t.Helper()
	fake := &fakeStripe{status: status, body: body}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	api := client.New("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return NewStripeProviderWithClient(api, testWebhookSecret, logger.NewNopLogger()), fake
}

func signedPayload(t *testing.T, payload string) (string, []byte) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Header, signed.Payload
}

func TestStripeProvider_ParseSubscriptionEvent(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusOK, "{}")
	payload := `{
		"id": "evt_sub_1",
		"object": "event",
		"type": "customer.subscription.updated",
		"data": {"object": {
			"id": "sub_123",
			"object": "subscription",
			"customer": "cus_123",
			"status": "active",
			"current_period_start": 1772323200,
			"current_period_end": 1775001600,
			"metadata": {"user_id": "42"},
			"items": {"object": "list", "data": [{"id": "si_1", "object": "subscription_item", "price": {"id": "price_pro", "object": "price"}}]}
		}}
	}`
	header, body := signedPayload(t, payload)

	ev, err := p.ParseWebhookEvent(body, header)
	require.NoError(t, err)

	assert.Equal(t, "evt_sub_1", ev.ID)
	assert.Equal(t, billing.EventSubscriptionUpdated, ev.Type)
	assert.Equal(t, body, ev.Payload)
	require.NotNil(t, ev.Subscription)
	assert.Nil(t, ev.Invoice)
	assert.Equal(t, "sub_123", ev.Subscription.ID)
	assert.Equal(t, "cus_123", ev.Subscription.CustomerID)
	assert.Equal(t, "active", ev.Subscription.Status)
	assert.Equal(t, "price_pro", ev.Subscription.PriceID)
	assert.Equal(t, "42", ev.Subscription.Metadata["user_id"])
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), ev.Subscription.CurrentPeriodStart)
	assert.Equal(t, time.UTC, ev.Subscription.CurrentPeriodEnd.Location())
}

func TestStripeProvider_ParseInvoiceEvent(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusOK, "{}")
	payload := `{
		"id": "evt_inv_1",
		"object": "event",
		"type": "invoice.payment_failed",
		"data": {"object": {
			"id": "in_123",
			"object": "invoice",
			"subscription": "sub_123",
			"customer": "cus_123",
			"status": "open",
			"attempt_count": 2,
			"amount_due": 1900,
			"currency": "eur"
		}}
	}`
	header, body := signedPayload(t, payload)

	ev, err := p.ParseWebhookEvent(body, header)
	require.NoError(t, err)

	require.NotNil(t, ev.Invoice)
	assert.Nil(t, ev.Subscription)
	assert.Equal(t, "in_123", ev.Invoice.ID)
	assert.Equal(t, "sub_123", ev.Invoice.ProviderSubscriptionID)
	assert.Equal(t, "cus_123", ev.Invoice.CustomerID)
	assert.Equal(t, int64(2), ev.Invoice.AttemptCount)
	assert.Equal(t, int64(1900), ev.Invoice.AmountDue)
	assert.Equal(t, "eur", ev.Invoice.Currency)
	assert.True(t, ev.Invoice.IsPayable())
	assert.True(t, ev.Invoice.NextPaymentAttempt.IsZero())
}

func TestStripeProvider_ParseUnhandledEventType(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusOK, "{}")
	header, body := signedPayload(t, `{"id":"evt_x","object":"event","type":"customer.created","data":{"object":{"id":"cus_1","object":"customer"}}}`)

	ev, err := p.ParseWebhookEvent(body, header)
	require.NoError(t, err)
	assert.Equal(t, "customer.created", ev.Type)
	assert.Nil(t, ev.Subscription)
	assert.Nil(t, ev.Invoice)
}

func TestStripeProvider_RejectsBadSignature(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusOK, "{}")
	_, body := signedPayload(t, `{"id":"evt_1","object":"event","type":"invoice.paid","data":{"object":{}}}`)

	_, err := p.ParseWebhookEvent(body, "t=1,v1=deadbeef")
	assert.Error(t, err)

	_, err = p.ParseWebhookEvent(body, "")
	assert.Error(t, err)
}

func TestStripeProvider_RejectsTamperedPayload(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusOK, "{}")
	header, _ := signedPayload(t, `{"id":"evt_1","object":"event","type":"invoice.paid","data":{"object":{}}}`)

	_, err := p.ParseWebhookEvent([]byte(`{"id":"evt_2","object":"event","type":"invoice.paid","data":{"object":{}}}`), header)
	assert.Error(t, err)
}

func TestStripeProvider_SignedButUndecodablePayload(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusOK, "{}")

	header, body := signedPayload(t, `{"id":"evt_1","object":"event","type":"customer.subscription.updated","data":{"object":{"id":"sub_1","object":"subscription","status":42}}}`)
	_, err := p.ParseWebhookEvent(body, header)
	require.Error(t, err)
	assert.ErrorIs(t, err, paymentgateway.ErrMalformedEvent)

	header, body = signedPayload(t, `not json`)
	_, err = p.ParseWebhookEvent(body, header)
	assert.ErrorIs(t, err, paymentgateway.ErrMalformedEvent)
}

func TestStripeProvider_SignatureErrorsAreNotMalformed(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusOK, "{}")
	_, body := signedPayload(t, `{"id":"evt_1","object":"event","type":"invoice.paid","data":{"object":{}}}`)

	_, err := p.ParseWebhookEvent(body, "t=1,v1=deadbeef")
	require.Error(t, err)
	assert.NotErrorIs(t, err, paymentgateway.ErrMalformedEvent)
}

func TestStripeProvider_MissingWebhookSecret(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusOK, "{}")
	p.webhookSecret = ""
	header, body := signedPayload(t, `{"id":"evt_1","object":"event","type":"invoice.paid","data":{"object":{}}}`)

	_, err := p.ParseWebhookEvent(body, header)
	assert.Error(t, err)
}

func TestStripeProvider_PauseSubscription(t *testing.T) {
	p, fake := newTestProvider(t, http.StatusOK, `{"id":"sub_123","object":"subscription"}`)

	require.NoError(t, p.PauseSubscription(context.Background(), "sub_123"))

	req := fake.last(t)
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/v1/subscriptions/sub_123", req.path)
	assert.Equal(t, "void", req.form.Get("pause_collection[behavior]"))
	assert.NotEmpty(t, req.idempotencyKey)
}

func TestStripeProvider_ResumeSubscription(t *testing.T) {
	p, fake := newTestProvider(t, http.StatusOK, `{"id":"sub_123","object":"subscription"}`)

	require.NoError(t, p.ResumeSubscription(context.Background(), "sub_123"))

	req := fake.last(t)
	assert.Equal(t, "/v1/subscriptions/sub_123", req.path)
	values, ok := req.form["pause_collection"]
	require.True(t, ok)
	assert.Equal(t, []string{""}, values)
}

func TestStripeProvider_IdempotencyKeysDiffer(t *testing.T) {
	p, fake := newTestProvider(t, http.StatusOK, `{"id":"sub_123","object":"subscription"}`)

	require.NoError(t, p.PauseSubscription(context.Background(), "sub_123"))
	first := fake.last(t).idempotencyKey
	require.NoError(t, p.PauseSubscription(context.Background(), "sub_123"))
	second := fake.last(t).idempotencyKey

	assert.NotEqual(t, first, second)
}

func TestStripeProvider_CancelMissingSubscription(t *testing.T) {
	p, fake := newTestProvider(t, http.StatusNotFound,
		`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such subscription"}}`)

	require.NoError(t, p.CancelSubscription(context.Background(), "sub_gone"))
	req := fake.last(t)
	assert.Equal(t, http.MethodDelete, req.method)
	assert.Equal(t, "/v1/subscriptions/sub_gone", req.path)
}

func TestStripeProvider_GetInvoice(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusOK,
		`{"id":"in_1","object":"invoice","customer":"cus_9","subscription":"sub_9","status":"uncollectible","attempt_count":4,"amount_due":7900,"currency":"eur"}`)

	inv, err := p.GetInvoice(context.Background(), "in_1")
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, "cus_9", inv.CustomerID)
	assert.Equal(t, "sub_9", inv.ProviderSubscriptionID)
	assert.Equal(t, int64(4), inv.AttemptCount)
	assert.True(t, inv.IsPayable())
}

func TestStripeProvider_GetInvoiceNotFound(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusNotFound,
		`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such invoice"}}`)

	inv, err := p.GetInvoice(context.Background(), "in_missing")
	require.NoError(t, err)
	assert.Nil(t, inv)
}

func TestStripeProvider_PayInvoiceError(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusPaymentRequired,
		`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`)

	_, err := p.PayInvoice(context.Background(), "in_1")
	assert.Error(t, err)
}

func TestStripeProvider_CreateCheckoutSession(t *testing.T) {
	p, fake := newTestProvider(t, http.StatusOK, `{"id":"cs_1","object":"checkout.session","url":"https://checkout.example/cs_1"}`)

	sess, err := p.CreateCheckoutSession(context.Background(), paymentgateway.CheckoutRequest{
		CustomerID:        "cus_1",
		PriceID:           "price_pro",
		SuccessURL:        "https://app.example/billing/success",
		CancelURL:         "https://app.example/billing/cancel",
		ClientReferenceID: "42",
		Metadata:          map[string]string{"user_id": "42", "plan_id": "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", sess.ID)
	assert.Equal(t, "https://checkout.example/cs_1", sess.URL)

	req := fake.last(t)
	assert.Equal(t, "/v1/checkout/sessions", req.path)
	assert.Equal(t, "subscription", req.form.Get("mode"))
	assert.Equal(t, "cus_1", req.form.Get("customer"))
	assert.Equal(t, "price_pro", req.form.Get("line_items[0][price]"))
	assert.Equal(t, "42", req.form.Get("client_reference_id"))
	assert.Equal(t, "42", req.form.Get("subscription_data[metadata][user_id]"))
}

func TestStripeProvider_CreateCustomer(t *testing.T) {
	p, fake := newTestProvider(t, http.StatusOK, `{"id":"cus_new","object":"customer"}`)

	id, err := p.CreateCustomer(context.Background(), paymentgateway.CreateCustomerRequest{
		Email:  "jeanne@example.com",
		Name:   "Jeanne",
		UserID: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, "cus_new", id)

	req := fake.last(t)
	assert.Equal(t, "/v1/customers", req.path)
	assert.Equal(t, "jeanne@example.com", req.form.Get("email"))
	assert.Equal(t, "7", req.form.Get("metadata[user_id]"))
}

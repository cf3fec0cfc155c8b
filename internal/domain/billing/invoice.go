package billing

import "time"

// Invoice statuses reported by the provider.
const (
	InvoiceStatusDraft         = "draft"
	InvoiceStatusOpen          = "open"
	InvoiceStatusPaid          = "paid"
	InvoiceStatusUncollectible = "uncollectible"
	InvoiceStatusVoid          = "void"
)

// ProviderInvoice is the provider's invoice reduced to what dunning needs.
type ProviderInvoice struct {
	ID                     string
	ProviderSubscriptionID string
	CustomerID             string
	Status                 string
	AttemptCount           int64
	AmountDue              int64
	Currency               string
	NextPaymentAttempt     time.Time
}

// IsPayable reports whether a manual payment attempt may be made.
func (i ProviderInvoice) IsPayable() bool {
	return i.Status == InvoiceStatusOpen || i.Status == InvoiceStatusUncollectible
}

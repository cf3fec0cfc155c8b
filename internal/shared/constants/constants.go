package constants

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	HeaderAuthorization   = "Authorization"
	HeaderXRequestID      = "X-Request-ID"
	HeaderStripeSignature = "Stripe-Signature"

	ContextKeyUserID    = "user_id"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"

	// WebhookMaxBodyBytes caps provider webhook payloads.
	WebhookMaxBodyBytes = int64(65536)

	ErrMsgInternalServerError = "Internal server error occurred"
)

// Table names.
const (
	TableUsers           = "users"
	TableForms           = "forms"
	TableFormVersions    = "form_versions"
	TableFormFields      = "form_fields"
	TableSubmissions     = "form_submissions"
	TablePlans           = "plans"
	TableFeatures        = "features"
	TablePlanFeatures    = "plan_features"
	TableSubscriptions   = "subscriptions"
	TableQuotaStatus     = "user_quota_status"
	TableWebhookEvents   = "webhook_events"
	TablePaymentFailures = "payment_failures"
)

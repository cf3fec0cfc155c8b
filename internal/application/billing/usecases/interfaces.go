package usecases

import (
	"context"

	"github.com/formcraft-io/formcraft/internal/domain/billing"
	"github.com/formcraft-io/formcraft/internal/domain/subscription"
)

// SubscriptionLifecycle is the part of the subscription lifecycle manager
// that provider events and the downgrade sweep drive.
type SubscriptionLifecycle interface {
	CreateFromProviderEvent(ctx context.Context, ps subscription.ProviderSubscription) (*subscription.Subscription, error)
	SyncProviderSubscription(ctx context.Context, ps subscription.ProviderSubscription) (*subscription.Subscription, error)
	CancelFromProvider(ctx context.Context, providerSubscriptionID string) (bool, error)
	DowngradeToPlan(ctx context.Context, suspended *subscription.Subscription, planID uint) (*subscription.Subscription, error)
}

// LimitsCacheInvalidator drops the cached plan limits of a user.
type LimitsCacheInvalidator interface {
	Invalidate(ctx context.Context, userID uint) error
}

// Metrics records billing counters.
type Metrics interface {
	WebhookEvent(eventType, result string)
	DunningStage(stage billing.Stage)
}

type nopMetrics struct{}

func (nopMetrics) WebhookEvent(string, string) {}
func (nopMetrics) DunningStage(billing.Stage)  {}

package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formcraft-io/formcraft/internal/application/notification"
	"github.com/formcraft-io/formcraft/internal/domain/billing"
	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

func suspendedSince(t *testing.T, env *billingEnv, providerID string, since time.Time) *subscription.Subscription {
	t.Helper()
	suspendedAt := since
	sub, err := subscription.ReconstructSubscription(1, "sub_old_"+providerID, env.user.ID(), env.pro.ID(),
		subscription.StatusSuspended, since.AddDate(0, -1, 0), since, providerID, &suspendedAt, nil, 2, since, since)
	require.NoError(t, err)
	require.NoError(t, env.subs.Create(context.Background(), sub))
	return sub
}

func newDowngrade(env *billingEnv) *DowngradeSuspendedUseCase {
	return NewDowngradeSuspendedUseCase(env.subs, env.plans, env.users, env.lifecycle, env.provider, env.notifier,
		billing.DefaultPolicy(), "free", logger.NewNopLogger())
}

func TestDowngradeSuspended_MovesExpiredToFree(t *testing.T) {
	env := newBillingEnv(t)
	ctx := context.Background()
	_, err := env.lifecycle.CancelActiveSubscriptions(ctx, env.user.ID())
	require.NoError(t, err)

	expired := suspendedSince(t, env, "sub_stripe_old", time.Now().UTC().AddDate(0, 0, -8))
	recent := suspendedSince(t, env, "sub_stripe_recent", time.Now().UTC().AddDate(0, 0, -2))

	res, err := newDowngrade(env).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Downgraded)
	assert.Zero(t, res.Failed)

	assert.Equal(t, subscription.StatusCancelled, expired.Status())
	assert.True(t, recent.IsSuspended())
	assert.Equal(t, 1, env.provider.CallCount("CancelSubscription"))

	active, err := env.subs.GetActiveByUserID(ctx, env.user.ID())
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, env.free.ID(), active.PlanID())
	assert.Equal(t, []string{notification.TemplateDowngraded}, env.notifier.Templates())
}

func TestDowngradeSuspended_ProviderFailureKeepsSuspended(t *testing.T) {
	env := newBillingEnv(t)
	expired := suspendedSince(t, env, "sub_stripe_old", time.Now().UTC().AddDate(0, 0, -10))
	env.provider.CancelSubscriptionFunc = func(context.Context, string) error {
		return errors.New("timeout")
	}

	res, err := newDowngrade(env).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.True(t, expired.IsSuspended(), "retried on the next sweep")
	assert.Empty(t, env.notifier.Sent)
}

func TestDowngradeSuspended_MissingFreePlan(t *testing.T) {
	env := newBillingEnv(t)
	uc := NewDowngradeSuspendedUseCase(env.subs, env.plans, env.users, env.lifecycle, env.provider, env.notifier,
		billing.DefaultPolicy(), "starter", logger.NewNopLogger())

	_, err := uc.Execute(context.Background())
	assert.Error(t, err)
}

func TestDowngradeSuspended_KeepsPaidSubscriptionStartedWhileSuspended(t *testing.T) {
	env := newBillingEnv(t)
	ctx := context.Background()

	for attempt := int64(1); attempt <= 4; attempt++ {
		require.NoError(t, env.dunning.HandlePaymentFailed(ctx, failedInvoice("in_1", attempt)))
	}
	require.True(t, env.sub.IsSuspended())

	paid, err := env.lifecycle.CreateFromProviderSubscription(ctx, env.user.ID(), subscription.ProviderSubscription{
		ID:                 "sub_stripe_2",
		CustomerID:         "cus_ada",
		Status:             "active",
		PriceID:            "price_pro",
		CurrentPeriodStart: time.Now().UTC(),
		CurrentPeriodEnd:   time.Now().UTC().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	past := time.Now().UTC().AddDate(0, 0, -8)
	expired, err := subscription.ReconstructSubscription(env.sub.ID(), env.sub.SID(), env.user.ID(), env.pro.ID(),
		subscription.StatusSuspended, env.sub.StartDate(), env.sub.EndDate(), "sub_stripe_1", &past, nil,
		env.sub.Version(), env.sub.CreatedAt(), past)
	require.NoError(t, err)
	require.NoError(t, env.subs.Update(ctx, expired))
	sent := len(env.notifier.Sent)

	res, err := newDowngrade(env).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Downgraded)

	assert.Equal(t, subscription.StatusCancelled, expired.Status())
	assert.True(t, paid.IsActive())
	active, err := env.subs.ListActiveByUserID(ctx, env.user.ID())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "sub_stripe_2", active[0].ProviderSubscriptionID())
	assert.Equal(t, env.pro.ID(), active[0].PlanID())
	assert.Len(t, env.notifier.Sent, sent, "no downgrade notice")
}

func TestDowngradeSuspended_SkipsSubscriptionWithinGrace(t *testing.T) {
	env := newBillingEnv(t)
	ctx := context.Background()
	recent := suspendedSince(t, env, "sub_stripe_recent", time.Now().UTC().AddDate(0, 0, -2))

	done, err := newDowngrade(env).downgrade(ctx, recent, env.free)
	require.NoError(t, err)
	assert.False(t, done)
	assert.True(t, recent.IsSuspended())
	assert.Zero(t, env.provider.CallCount("CancelSubscription"))
}

package usecases

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	subusecases "github.com/formcraft-io/formcraft/internal/application/subscription/usecases"
	"github.com/formcraft-io/formcraft/internal/application/testutil"
	"github.com/formcraft-io/formcraft/internal/domain/billing"
	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/domain/user"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

type recordingMetrics struct {
	webhooks []string
	stages   []billing.Stage
}

func (m *recordingMetrics) WebhookEvent(eventType, result string) {
	m.webhooks = append(m.webhooks, eventType+":"+result)
}

func (m *recordingMetrics) DunningStage(stage billing.Stage) {
	m.stages = append(m.stages, stage)
}

type billingEnv struct {
	users     *testutil.UserRepository
	subs      *testutil.SubscriptionRepository
	plans     *testutil.PlanRepository
	failures  *testutil.PaymentFailureRepository
	events    *testutil.WebhookEventRepository
	notifier  *testutil.Notifier
	provider  *testutil.PaymentProvider
	cache     *testutil.LimitsCache
	metrics   *recordingMetrics
	lifecycle *subusecases.LifecycleManager
	dunning   *DunningService
	webhook   *HandleWebhookUseCase
	user      *user.User
	free      *subscription.Plan
	pro       *subscription.Plan
	sub       *subscription.Subscription
}

func newBillingEnv(t *testing.T) *billingEnv {
	t.Helper()
	ctx := context.Background()
	log := logger.NewNopLogger()
	env := &billingEnv{
		users:    testutil.NewUserRepository(),
		subs:     testutil.NewSubscriptionRepository(),
		plans:    testutil.NewPlanRepository(),
		failures: testutil.NewPaymentFailureRepository(),
		events:   testutil.NewWebhookEventRepository(),
		notifier: &testutil.Notifier{},
		provider: &testutil.PaymentProvider{},
		cache:    testutil.NewLimitsCache(),
		metrics:  &recordingMetrics{},
	}

	u, err := user.NewUser("ada@example.com", "Ada", "")
	require.NoError(t, err)
	u.LinkProviderCustomer("cus_ada")
	require.NoError(t, env.users.Create(ctx, u))
	env.user = u

	env.free, err = subscription.NewPlan("free", "Gratuit", decimal.Zero, "eur",
		subscription.PlanLimits{MaxForms: 3, MaxSubmissionsPerMonth: 100, MaxStorageMb: 10})
	require.NoError(t, err)
	require.NoError(t, env.plans.Create(ctx, env.free))
	env.pro, err = subscription.NewPlan("pro", "Pro", decimal.NewFromInt(19), "eur",
		subscription.PlanLimits{MaxForms: 50, MaxSubmissionsPerMonth: 10000, MaxStorageMb: 1000})
	require.NoError(t, err)
	env.pro.LinkProvider("prod_pro", "price_pro")
	require.NoError(t, env.plans.Create(ctx, env.pro))

	tx := &testutil.Transactor{}
	n := 0
	newID := func() (string, error) {
		n++
		return fmt.Sprintf("sub_%d", n), nil
	}
	env.lifecycle = subusecases.NewLifecycleManager(env.subs, env.plans, env.users, tx, newID, log)

	env.sub, err = env.lifecycle.CreateFromProviderSubscription(ctx, u.ID(), subscription.ProviderSubscription{
		ID:                 "sub_stripe_1",
		CustomerID:         "cus_ada",
		Status:             "active",
		PriceID:            "price_pro",
		CurrentPeriodStart: time.Now().UTC(),
		CurrentPeriodEnd:   time.Now().UTC().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	env.dunning = NewDunningService(env.subs, env.failures, env.users, env.provider, env.notifier, tx, billing.DefaultPolicy(), log)
	env.dunning.SetLimitsCache(env.cache)
	env.dunning.SetMetrics(env.metrics)

	env.webhook = NewHandleWebhookUseCase(env.provider, env.events, env.lifecycle, env.dunning, log)
	env.webhook.SetMetrics(env.metrics)
	return env
}

func failedInvoice(id string, attempt int64) billing.ProviderInvoice {
	return billing.ProviderInvoice{
		ID:                     id,
		ProviderSubscriptionID: "sub_stripe_1",
		CustomerID:             "cus_ada",
		Status:                 billing.InvoiceStatusOpen,
		AttemptCount:           attempt,
		AmountDue:              1900,
		Currency:               "eur",
	}
}

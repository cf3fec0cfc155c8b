package usecases

import (
	"context"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/application/notification"
	"github.com/formcraft-io/formcraft/internal/application/payment/paymentgateway"
	"github.com/formcraft-io/formcraft/internal/domain/billing"
	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/domain/user"
	"github.com/formcraft-io/formcraft/internal/shared/biztime"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// DowngradeResult summarises one sweep.
type DowngradeResult struct {
	Downgraded int
	Skipped    int
	Failed     int
}

// DowngradeSuspendedUseCase moves users whose subscription stayed
// SUSPENDED past the grace period to the free plan.
type DowngradeSuspendedUseCase struct {
	subscriptionRepo subscription.Repository
	planRepo         subscription.PlanRepository
	userRepo         user.Repository
	lifecycle        SubscriptionLifecycle
	provider         paymentgateway.PaymentProvider
	notifier         notification.Notifier
	policy           billing.Policy
	freePlanSlug     string
	logger           logger.Interface
}

func NewDowngradeSuspendedUseCase(
	subscriptionRepo subscription.Repository,
	planRepo subscription.PlanRepository,
	userRepo user.Repository,
	lifecycle SubscriptionLifecycle,
	provider paymentgateway.PaymentProvider,
	notifier notification.Notifier,
	policy billing.Policy,
	freePlanSlug string,
	logger logger.Interface,
) *DowngradeSuspendedUseCase {
	return &DowngradeSuspendedUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		userRepo:         userRepo,
		lifecycle:        lifecycle,
		provider:         provider,
		notifier:         notifier,
		policy:           policy,
		freePlanSlug:     freePlanSlug,
		logger:           logger,
	}
}

// Execute downgrades every expired subscription. A failure on one
// subscription is logged and the sweep continues; it is picked up again
// on the next run.
func (uc *DowngradeSuspendedUseCase) Execute(ctx context.Context) (*DowngradeResult, error) {
	freePlan, err := uc.planRepo.GetBySlug(ctx, uc.freePlanSlug)
	if err != nil {
		uc.logger.Errorw("failed to get free plan", "error", err, "slug", uc.freePlanSlug)
		return nil, fmt.Errorf("failed to get free plan: %w", err)
	}
	if freePlan == nil {
		return nil, fmt.Errorf("free plan %q is not seeded", uc.freePlanSlug)
	}

	cutoff := biztime.NowUTC().Add(-uc.policy.GraceDuration())
	expired, err := uc.subscriptionRepo.ListSuspendedBefore(ctx, cutoff)
	if err != nil {
		uc.logger.Errorw("failed to list suspended subscriptions", "error", err)
		return nil, fmt.Errorf("failed to list suspended subscriptions: %w", err)
	}

	result := &DowngradeResult{}
	for _, sub := range expired {
		done, err := uc.downgrade(ctx, sub, freePlan)
		if err != nil {
			result.Failed++
			uc.logger.Errorw("failed to downgrade subscription", "error", err, "subscription_id", sub.SID(), "user_id", sub.UserID())
			continue
		}
		if !done {
			result.Skipped++
			continue
		}
		result.Downgraded++
	}

	if len(expired) > 0 {
		uc.logger.Infow("downgrade sweep finished", "downgraded", result.Downgraded, "skipped", result.Skipped, "failed", result.Failed)
	}
	return result, nil
}

func (uc *DowngradeSuspendedUseCase) downgrade(ctx context.Context, sub *subscription.Subscription, freePlan *subscription.Plan) (bool, error) {
	if !sub.GraceExpired(biztime.NowUTC(), uc.policy.GraceDuration()) {
		uc.logger.Debugw("subscription no longer due for downgrade", "subscription_id", sub.SID(), "status", sub.Status())
		return false, nil
	}

	if pid := sub.ProviderSubscriptionID(); pid != "" {
		if err := uc.provider.CancelSubscription(ctx, pid); err != nil {
			return false, fmt.Errorf("failed to cancel provider subscription: %w", err)
		}
	}

	current, err := uc.lifecycle.DowngradeToPlan(ctx, sub, freePlan.ID())
	if err != nil {
		return false, err
	}
	if current.PlanID() != freePlan.ID() {
		// The user moved to another plan while suspended.
		return true, nil
	}

	notify(ctx, uc.userRepo, uc.notifier, uc.logger, current, notification.TemplateDowngraded, map[string]any{
		"plan":                  freePlan.Name(),
		"previous_subscription": sub.SID(),
	})
	return true, nil
}

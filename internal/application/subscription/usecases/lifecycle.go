package usecases

import (
	"context"
	"fmt"
	"strconv"

	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/domain/user"
	"github.com/formcraft-io/formcraft/internal/shared/biztime"
	"github.com/formcraft-io/formcraft/internal/shared/db"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// LifecycleManager keeps at most one ACTIVE subscription per user. Every
// mutation that may produce an ACTIVE row cancels the previous ones in the
// same transaction.
type LifecycleManager struct {
	subscriptionRepo subscription.Repository
	planRepo         subscription.PlanRepository
	userRepo         user.Repository
	txManager        db.Transactor
	newID            IDGenerator
	cache            LimitsCacheInvalidator // optional
	logger           logger.Interface
}

func NewLifecycleManager(
	subscriptionRepo subscription.Repository,
	planRepo subscription.PlanRepository,
	userRepo user.Repository,
	txManager db.Transactor,
	newID IDGenerator,
	logger logger.Interface,
) *LifecycleManager {
	return &LifecycleManager{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		userRepo:         userRepo,
		txManager:        txManager,
		newID:            newID,
		logger:           logger,
	}
}

func (m *LifecycleManager) SetLimitsCache(cache LimitsCacheInvalidator) {
	m.cache = cache
}

// CreateSubscription cancels the user's ACTIVE subscriptions and starts a
// new ACTIVE one on planID, atomically.
func (m *LifecycleManager) CreateSubscription(ctx context.Context, userID, planID uint) (*subscription.Subscription, error) {
	var created *subscription.Subscription
	err := m.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		created, err = m.createLocked(txCtx, userID, planID)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.invalidate(ctx, userID)
	m.logger.Infow("subscription created",
		"subscription_id", created.SID(),
		"user_id", userID,
		"plan_id", planID,
	)
	return created, nil
}

// ChangePlan moves the user to newPlanID. The previous subscription is
// cancelled and a new one is started.
func (m *LifecycleManager) ChangePlan(ctx context.Context, userID, newPlanID uint) (*subscription.Subscription, error) {
	return m.CreateSubscription(ctx, userID, newPlanID)
}

// CancelActiveSubscriptions cancels every ACTIVE subscription of the user
// and returns how many were cancelled.
func (m *LifecycleManager) CancelActiveSubscriptions(ctx context.Context, userID uint) (int, error) {
	var cancelled int
	err := m.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		cancelled, err = m.cancelActiveLocked(txCtx, userID, 0)
		return err
	})
	if err != nil {
		return 0, err
	}
	if cancelled > 0 {
		m.invalidate(ctx, userID)
	}
	return cancelled, nil
}

// DowngradeToPlan cancels a SUSPENDED subscription and starts the user on
// planID in one transaction. A user who already holds an ACTIVE
// subscription keeps it and no new one is created; that subscription is
// returned instead.
func (m *LifecycleManager) DowngradeToPlan(ctx context.Context, suspended *subscription.Subscription, planID uint) (*subscription.Subscription, error) {
	var current *subscription.Subscription
	var kept bool
	err := m.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		active, err := m.subscriptionRepo.ListActiveByUserID(txCtx, suspended.UserID())
		if err != nil {
			m.logger.Errorw("failed to list active subscriptions", "error", err, "user_id", suspended.UserID())
			return fmt.Errorf("failed to list active subscriptions: %w", err)
		}

		if err := suspended.Cancel(); err != nil {
			return apperrors.NewInvariantViolationError(err.Error())
		}
		if err := m.subscriptionRepo.Update(txCtx, suspended); err != nil {
			m.logger.Errorw("failed to cancel suspended subscription", "error", err, "subscription_id", suspended.SID())
			return fmt.Errorf("failed to cancel subscription: %w", err)
		}

		if len(active) > 0 {
			current, kept = active[len(active)-1], true
			return nil
		}
		current, err = m.createLocked(txCtx, suspended.UserID(), planID)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.invalidate(ctx, suspended.UserID())
	if kept {
		m.logger.Infow("suspended subscription cancelled, active subscription kept",
			"subscription_id", suspended.SID(),
			"active_subscription_id", current.SID(),
			"user_id", suspended.UserID(),
		)
		return current, nil
	}
	m.logger.Infow("subscription downgraded",
		"subscription_id", suspended.SID(),
		"new_subscription_id", current.SID(),
		"user_id", suspended.UserID(),
		"plan_id", planID,
	)
	return current, nil
}

// CreateFromProviderSubscription mirrors a provider subscription locally.
// A provider id that is already known returns the existing record.
func (m *LifecycleManager) CreateFromProviderSubscription(ctx context.Context, userID uint, ps subscription.ProviderSubscription) (*subscription.Subscription, error) {
	existing, err := m.subscriptionRepo.GetByProviderSubscriptionID(ctx, ps.ID)
	if err != nil {
		m.logger.Errorw("failed to get subscription by provider id", "error", err, "provider_subscription_id", ps.ID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	plan, err := m.resolvePriceOrFail(ctx, ps.PriceID)
	if err != nil {
		return nil, err
	}

	sid, err := m.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscription id: %w", err)
	}
	sub, err := subscription.NewFromProvider(sid, userID, plan.ID(), ps)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	err = m.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if sub.IsActive() {
			if _, err := m.cancelActiveLocked(txCtx, userID, 0); err != nil {
				return err
			}
		}
		return m.subscriptionRepo.Create(txCtx, sub)
	})
	if err != nil {
		if apperrors.IsDuplicateError(err) {
			// A redelivered event raced this one to the insert.
			return m.subscriptionRepo.GetByProviderSubscriptionID(ctx, ps.ID)
		}
		m.logger.Errorw("failed to create subscription from provider", "error", err, "provider_subscription_id", ps.ID, "user_id", userID)
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	m.invalidate(ctx, userID)
	m.logger.Infow("subscription created from provider",
		"subscription_id", sub.SID(),
		"provider_subscription_id", ps.ID,
		"user_id", userID,
		"status", sub.Status(),
	)
	return sub, nil
}

// UpdateFromProviderSubscription applies the provider's plan, period and
// status to the local record in place.
func (m *LifecycleManager) UpdateFromProviderSubscription(ctx context.Context, local *subscription.Subscription, ps subscription.ProviderSubscription) (*subscription.Subscription, error) {
	var planID uint
	if ps.PriceID != "" {
		plan, err := m.resolvePriceOrFail(ctx, ps.PriceID)
		if err != nil {
			return nil, err
		}
		planID = plan.ID()
	}

	err := m.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		local.ApplyProviderState(planID, ps)
		if local.IsActive() {
			if _, err := m.cancelActiveLocked(txCtx, local.UserID(), local.ID()); err != nil {
				return err
			}
		}
		if err := m.subscriptionRepo.Update(txCtx, local); err != nil {
			m.logger.Errorw("failed to update subscription from provider", "error", err, "subscription_id", local.SID())
			return fmt.Errorf("failed to update subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.invalidate(ctx, local.UserID())
	m.logger.Infow("subscription updated from provider",
		"subscription_id", local.SID(),
		"provider_subscription_id", ps.ID,
		"status", local.Status(),
		"plan_id", local.PlanID(),
	)
	return local, nil
}

// SyncProviderSubscription creates or updates the local mirror of ps. The
// owning user is found by provider customer id, then by the user_id
// metadata set at checkout.
func (m *LifecycleManager) SyncProviderSubscription(ctx context.Context, ps subscription.ProviderSubscription) (*subscription.Subscription, error) {
	local, err := m.subscriptionRepo.GetByProviderSubscriptionID(ctx, ps.ID)
	if err != nil {
		m.logger.Errorw("failed to get subscription by provider id", "error", err, "provider_subscription_id", ps.ID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if local != nil {
		return m.UpdateFromProviderSubscription(ctx, local, ps)
	}

	u, err := m.resolveUser(ctx, ps)
	if err != nil {
		return nil, err
	}
	return m.CreateFromProviderSubscription(ctx, u.ID(), ps)
}

// CreateFromProviderEvent handles a subscription-created delivery. A
// subscription that is already mirrored is returned unchanged.
func (m *LifecycleManager) CreateFromProviderEvent(ctx context.Context, ps subscription.ProviderSubscription) (*subscription.Subscription, error) {
	existing, err := m.subscriptionRepo.GetByProviderSubscriptionID(ctx, ps.ID)
	if err != nil {
		m.logger.Errorw("failed to get subscription by provider id", "error", err, "provider_subscription_id", ps.ID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	u, err := m.resolveUser(ctx, ps)
	if err != nil {
		return nil, err
	}
	return m.CreateFromProviderSubscription(ctx, u.ID(), ps)
}

// CancelFromProvider marks the local mirror CANCELLED. Unknown provider ids
// are ignored and reported as not handled.
func (m *LifecycleManager) CancelFromProvider(ctx context.Context, providerSubscriptionID string) (bool, error) {
	local, err := m.subscriptionRepo.GetByProviderSubscriptionID(ctx, providerSubscriptionID)
	if err != nil {
		m.logger.Errorw("failed to get subscription by provider id", "error", err, "provider_subscription_id", providerSubscriptionID)
		return false, fmt.Errorf("failed to get subscription: %w", err)
	}
	if local == nil {
		m.logger.Warnw("provider cancelled unknown subscription", "provider_subscription_id", providerSubscriptionID)
		return false, nil
	}
	if err := local.Cancel(); err != nil {
		return false, apperrors.NewInvariantViolationError(err.Error())
	}
	if err := m.subscriptionRepo.Update(ctx, local); err != nil {
		m.logger.Errorw("failed to cancel subscription", "error", err, "subscription_id", local.SID())
		return false, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	m.invalidate(ctx, local.UserID())
	m.logger.Infow("subscription cancelled by provider", "subscription_id", local.SID(), "user_id", local.UserID())
	return true, nil
}

func (m *LifecycleManager) createLocked(ctx context.Context, userID, planID uint) (*subscription.Subscription, error) {
	plan, err := m.planRepo.GetByID(ctx, planID)
	if err != nil {
		m.logger.Errorw("failed to get plan", "error", err, "plan_id", planID)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found", strconv.FormatUint(uint64(planID), 10))
	}

	if _, err := m.cancelActiveLocked(ctx, userID, 0); err != nil {
		return nil, err
	}

	sid, err := m.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscription id: %w", err)
	}
	now := biztime.NowUTC()
	sub, err := subscription.NewSubscription(sid, userID, plan.ID(), now, now.AddDate(0, 1, 0))
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := m.subscriptionRepo.Create(ctx, sub); err != nil {
		m.logger.Errorw("failed to create subscription", "error", err, "user_id", userID, "plan_id", planID)
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	return sub, nil
}

// cancelActiveLocked cancels the user's ACTIVE subscriptions except keepID.
func (m *LifecycleManager) cancelActiveLocked(ctx context.Context, userID, keepID uint) (int, error) {
	active, err := m.subscriptionRepo.ListActiveByUserID(ctx, userID)
	if err != nil {
		m.logger.Errorw("failed to list active subscriptions", "error", err, "user_id", userID)
		return 0, fmt.Errorf("failed to list active subscriptions: %w", err)
	}

	cancelled := 0
	for _, s := range active {
		if s.ID() == keepID {
			continue
		}
		if err := s.Cancel(); err != nil {
			return cancelled, apperrors.NewInvariantViolationError(err.Error())
		}
		if err := m.subscriptionRepo.Update(ctx, s); err != nil {
			m.logger.Errorw("failed to cancel subscription", "error", err, "subscription_id", s.SID())
			return cancelled, fmt.Errorf("failed to cancel subscription: %w", err)
		}
		cancelled++
	}
	return cancelled, nil
}

func (m *LifecycleManager) resolvePriceOrFail(ctx context.Context, priceID string) (*subscription.Plan, error) {
	plan, err := m.planRepo.GetByProviderPriceID(ctx, priceID)
	if err != nil {
		m.logger.Errorw("failed to get plan by provider price", "error", err, "price_id", priceID)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		m.logger.Errorw("provider price is not mapped to a plan", "price_id", priceID)
		return nil, apperrors.NewNotFoundError("plan not found for provider price", priceID).
			WithContext("cause", subscription.ErrUnknownProviderPrice.Error())
	}
	return plan, nil
}

func (m *LifecycleManager) resolveUser(ctx context.Context, ps subscription.ProviderSubscription) (*user.User, error) {
	if ps.CustomerID != "" {
		u, err := m.userRepo.GetByProviderCustomerID(ctx, ps.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user by customer: %w", err)
		}
		if u != nil {
			return u, nil
		}
	}
	if raw := ps.Metadata["user_id"]; raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err == nil {
			u, err := m.userRepo.GetByID(ctx, uint(id))
			if err != nil {
				return nil, fmt.Errorf("failed to get user: %w", err)
			}
			if u != nil {
				return u, nil
			}
		}
	}
	m.logger.Warnw("provider subscription has no local user",
		"provider_subscription_id", ps.ID,
		"customer_id", ps.CustomerID,
	)
	return nil, apperrors.NewNotFoundError("user not found for provider subscription", ps.ID)
}

func (m *LifecycleManager) invalidate(ctx context.Context, userID uint) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Invalidate(ctx, userID); err != nil {
		m.logger.Warnw("failed to invalidate limits cache", "error", err, "user_id", userID)
	}
}


package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/domain/quota"
	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/domain/user"
	"github.com/formcraft-io/formcraft/internal/shared/biztime"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// Calculator computes usage against the active plan and gates actions.
type Calculator struct {
	subscriptionRepo subscription.Repository
	planRepo         subscription.PlanRepository
	formRepo         form.Repository
	submissionRepo   form.SubmissionRepository
	userRepo         user.Repository
	gate             *NotificationGate
	storage          StorageMeter
	limitsCache      LimitsCache
	metrics          Metrics
	logger           logger.Interface
}

func NewCalculator(
	subscriptionRepo subscription.Repository,
	planRepo subscription.PlanRepository,
	formRepo form.Repository,
	submissionRepo form.SubmissionRepository,
	userRepo user.Repository,
	gate *NotificationGate,
	logger logger.Interface,
) *Calculator {
	return &Calculator{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		formRepo:         formRepo,
		submissionRepo:   submissionRepo,
		userRepo:         userRepo,
		gate:             gate,
		storage:          zeroStorageMeter{},
		metrics:          nopMetrics{},
		logger:           logger,
	}
}

// SetStorageMeter replaces the default meter, which always reports 0 MB.
func (c *Calculator) SetStorageMeter(m StorageMeter) {
	if m != nil {
		c.storage = m
	}
}

func (c *Calculator) SetLimitsCache(cache LimitsCache) {
	c.limitsCache = cache
}

func (c *Calculator) SetMetrics(m Metrics) {
	if m != nil {
		c.metrics = m
	}
}

// CalculateCurrentQuotas builds the user's snapshot for the current month
// and lets the notification gate react to it.
func (c *Calculator) CalculateCurrentQuotas(ctx context.Context, userID uint) (*quota.Snapshot, error) {
	limits, err := c.resolveLimits(ctx, userID)
	if err != nil {
		return nil, err
	}

	usage, err := c.measureUsage(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := quota.NewSnapshot(*limits, usage)

	if c.gate != nil {
		u, err := c.userRepo.GetByID(ctx, userID)
		if err != nil {
			c.logger.Errorw("failed to load user for quota notifications", "error", err, "user_id", userID)
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		if u != nil {
			if err := c.gate.CheckAndSendNotifications(ctx, u, snapshot); err != nil {
				return nil, err
			}
		}
	}

	return &snapshot, nil
}

// CanPerformAction reports whether quantity more of action fits the plan.
func (c *Calculator) CanPerformAction(ctx context.Context, userID uint, action quota.ActionType, quantity float64) (bool, error) {
	d, err := c.decide(ctx, userID, action, quantity)
	if err != nil {
		return false, err
	}
	return d.Allowed, nil
}

// EnforceQuotaLimit fails with a quota exceeded error when the action is
// not allowed.
func (c *Calculator) EnforceQuotaLimit(ctx context.Context, userID uint, action quota.ActionType, quantity float64) error {
	d, err := c.decide(ctx, userID, action, quantity)
	if err != nil {
		return err
	}

	var exceeded *quota.ExceededError
	if !errors.As(d.Err(), &exceeded) {
		return nil
	}

	c.metrics.QuotaExceeded(string(exceeded.Action))
	c.logger.Infow("quota exceeded",
		"user_id", userID,
		"action", exceeded.Action,
		"current_usage", exceeded.CurrentUsage,
		"max_limit", exceeded.MaxLimit,
	)
	return apperrors.NewQuotaExceededError(string(exceeded.Action), exceeded.CurrentUsage, exceeded.MaxLimit)
}

func (c *Calculator) decide(ctx context.Context, userID uint, action quota.ActionType, quantity float64) (quota.Decision, error) {
	if !action.IsValid() {
		return quota.Decision{}, apperrors.NewValidationError(fmt.Sprintf("unknown quota action: %s", action))
	}
	snapshot, err := c.CalculateCurrentQuotas(ctx, userID)
	if err != nil {
		return quota.Decision{}, err
	}
	return quota.Evaluate(*snapshot, action, quantity)
}

func (c *Calculator) resolveLimits(ctx context.Context, userID uint) (*subscription.PlanLimits, error) {
	if c.limitsCache != nil {
		cached, err := c.limitsCache.Get(ctx, userID)
		if err != nil {
			c.logger.Warnw("limits cache read failed", "error", err, "user_id", userID)
		} else if cached != nil {
			return cached, nil
		}
	}

	sub, err := c.subscriptionRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		c.logger.Errorw("failed to get active subscription", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}
	if sub == nil {
		return nil, apperrors.NewNoActivePlanError("no active plan", subscription.ErrNoActivePlan.Error())
	}

	plan, err := c.planRepo.GetByID(ctx, sub.PlanID())
	if err != nil {
		c.logger.Errorw("failed to get plan", "error", err, "plan_id", sub.PlanID())
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		return nil, apperrors.NewNoActivePlanError("no active plan", subscription.ErrPlanNotFound.Error())
	}

	limits := plan.Limits()
	if c.limitsCache != nil {
		if err := c.limitsCache.Set(ctx, userID, limits); err != nil {
			c.logger.Warnw("limits cache write failed", "error", err, "user_id", userID)
		}
	}
	return &limits, nil
}

func (c *Calculator) measureUsage(ctx context.Context, userID uint) (quota.Usage, error) {
	forms, err := c.formRepo.CountByOwner(ctx, userID)
	if err != nil {
		c.logger.Errorw("failed to count forms", "error", err, "user_id", userID)
		return quota.Usage{}, fmt.Errorf("failed to count forms: %w", err)
	}

	monthStart := quota.MonthKeyOf(biztime.NowUTC()).Start()
	submissions, err := c.submissionRepo.CountByOwnerSince(ctx, userID, monthStart)
	if err != nil {
		c.logger.Errorw("failed to count submissions", "error", err, "user_id", userID)
		return quota.Usage{}, fmt.Errorf("failed to count submissions: %w", err)
	}

	storage, err := c.storage.UsedMb(ctx, userID)
	if err != nil {
		c.logger.Errorw("failed to measure storage", "error", err, "user_id", userID)
		return quota.Usage{}, fmt.Errorf("failed to measure storage: %w", err)
	}

	return quota.Usage{
		FormsCount:       forms,
		SubmissionsCount: submissions,
		StorageUsedMb:    storage,
	}, nil
}


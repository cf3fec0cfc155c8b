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
	"github.com/formcraft-io/formcraft/internal/shared/db"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

var stageTemplates = map[billing.Stage]string{
	billing.StageFirstNotice:        notification.TemplatePaymentFailed,
	billing.StageUrgentNotice:       notification.TemplatePaymentUrgent,
	billing.StageSuspensionImminent: notification.TemplateSuspensionImminent,
	billing.StageSuspended:          notification.TemplateSubscriptionPaused,
}

// DunningService escalates failed recurring payments and reverses the
// suspension once a later invoice is paid.
type DunningService struct {
	subscriptionRepo subscription.Repository
	failureRepo      billing.PaymentFailureRepository
	userRepo         user.Repository
	provider         paymentgateway.PaymentProvider
	notifier         notification.Notifier
	txManager        db.Transactor
	policy           billing.Policy
	cache            LimitsCacheInvalidator // optional
	metrics          Metrics
	logger           logger.Interface
}

func NewDunningService(
	subscriptionRepo subscription.Repository,
	failureRepo billing.PaymentFailureRepository,
	userRepo user.Repository,
	provider paymentgateway.PaymentProvider,
	notifier notification.Notifier,
	txManager db.Transactor,
	policy billing.Policy,
	logger logger.Interface,
) *DunningService {
	return &DunningService{
		subscriptionRepo: subscriptionRepo,
		failureRepo:      failureRepo,
		userRepo:         userRepo,
		provider:         provider,
		notifier:         notifier,
		txManager:        txManager,
		policy:           policy,
		metrics:          nopMetrics{},
		logger:           logger,
	}
}

func (s *DunningService) SetLimitsCache(cache LimitsCacheInvalidator) {
	s.cache = cache
}

func (s *DunningService) SetMetrics(m Metrics) {
	if m != nil {
		s.metrics = m
	}
}

// HandlePaymentFailed applies the dunning stage for the invoice attempt.
// Failures for unknown, SUSPENDED or CANCELLED subscriptions are logged and
// ignored, and a redelivered attempt is a no-op.
func (s *DunningService) HandlePaymentFailed(ctx context.Context, inv billing.ProviderInvoice) error {
	sub, err := s.subscriptionRepo.GetByProviderSubscriptionID(ctx, inv.ProviderSubscriptionID)
	if err != nil {
		s.logger.Errorw("failed to get subscription for invoice", "error", err, "invoice_id", inv.ID)
		return fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		s.logger.Warnw("payment failed for unknown subscription",
			"invoice_id", inv.ID,
			"provider_subscription_id", inv.ProviderSubscriptionID,
		)
		return nil
	}
	if !sub.IsActive() {
		s.logger.Infow("payment failure ignored for inactive subscription",
			"invoice_id", inv.ID,
			"subscription_id", sub.SID(),
			"status", sub.Status(),
		)
		return nil
	}

	decision := s.policy.Decide(inv.AttemptCount, biztime.NowUTC())
	duplicate := false

	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.failureRepo.Create(txCtx, billing.NewPaymentFailure(sub.ID(), inv.ID, decision)); err != nil {
			if apperrors.IsDuplicateError(err) {
				duplicate = true
				return nil
			}
			return fmt.Errorf("failed to record payment failure: %w", err)
		}
		if !decision.Suspends() {
			return nil
		}

		if err := sub.Suspend(); err != nil {
			return apperrors.NewInvariantViolationError(err.Error())
		}
		if err := s.subscriptionRepo.Update(txCtx, sub); err != nil {
			return fmt.Errorf("failed to suspend subscription: %w", err)
		}
		if err := s.provider.PauseSubscription(txCtx, sub.ProviderSubscriptionID()); err != nil {
			return apperrors.NewProviderError("failed to pause provider subscription", err.Error())
		}
		return nil
	})
	if err != nil {
		s.logger.Errorw("failed to handle payment failure",
			"error", err,
			"invoice_id", inv.ID,
			"subscription_id", sub.SID(),
			"attempt", decision.Attempt,
		)
		return err
	}
	if duplicate {
		s.logger.Infow("payment failure already handled",
			"invoice_id", inv.ID,
			"subscription_id", sub.SID(),
			"attempt", decision.Attempt,
		)
		return nil
	}

	s.metrics.DunningStage(decision.Stage)
	if decision.Suspends() {
		s.invalidate(ctx, sub.UserID())
	}
	s.logger.Infow("dunning stage applied",
		"invoice_id", inv.ID,
		"subscription_id", sub.SID(),
		"attempt", decision.Attempt,
		"stage", decision.Stage,
	)

	data := map[string]any{
		"attempt":    decision.Attempt,
		"invoice_id": inv.ID,
		"amount_due": inv.AmountDue,
		"currency":   inv.Currency,
	}
	if decision.RetryAt != nil {
		data["retry_at"] = decision.RetryAt.Format("2006-01-02")
	}
	if decision.DowngradeAt != nil {
		data["downgrade_at"] = decision.DowngradeAt.Format("2006-01-02")
	}
	s.notify(ctx, sub, stageTemplates[decision.Stage], data)
	return nil
}

// ReactivateSubscription moves a SUSPENDED subscription back to ACTIVE and
// resumes it at the provider. It reports false when there was nothing to
// reactivate. When the user started another subscription while suspended,
// that one is kept and the suspended one is cancelled instead.
func (s *DunningService) ReactivateSubscription(ctx context.Context, providerSubscriptionID string) (bool, error) {
	sub, err := s.subscriptionRepo.GetByProviderSubscriptionID(ctx, providerSubscriptionID)
	if err != nil {
		s.logger.Errorw("failed to get subscription", "error", err, "provider_subscription_id", providerSubscriptionID)
		return false, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil || !sub.IsSuspended() {
		s.logger.Debugw("subscription not suspended", "provider_subscription_id", providerSubscriptionID)
		return false, nil
	}

	var superseded bool
	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		active, err := s.subscriptionRepo.ListActiveByUserID(txCtx, sub.UserID())
		if err != nil {
			return fmt.Errorf("failed to list active subscriptions: %w", err)
		}
		if len(active) > 0 {
			superseded = true
			return s.cancelSuperseded(txCtx, sub)
		}

		if err := sub.Reactivate(); err != nil {
			return apperrors.NewInvariantViolationError(err.Error())
		}
		if err := s.subscriptionRepo.Update(txCtx, sub); err != nil {
			return fmt.Errorf("failed to reactivate subscription: %w", err)
		}
		if err := s.provider.ResumeSubscription(txCtx, providerSubscriptionID); err != nil {
			return apperrors.NewProviderError("failed to resume provider subscription", err.Error())
		}
		return nil
	})
	if err != nil {
		s.logger.Errorw("failed to reactivate subscription", "error", err, "subscription_id", sub.SID())
		return false, err
	}

	s.invalidate(ctx, sub.UserID())
	if superseded {
		s.logger.Infow("suspended subscription superseded by a newer one, cancelled",
			"subscription_id", sub.SID(),
			"provider_subscription_id", providerSubscriptionID,
			"user_id", sub.UserID(),
		)
		return true, nil
	}
	s.logger.Infow("subscription reactivated", "subscription_id", sub.SID(), "user_id", sub.UserID())
	s.notify(ctx, sub, notification.TemplateReactivated, nil)
	return true, nil
}

// cancelSuperseded cancels a suspended subscription the user has replaced,
// locally and at the provider, so the provider stops billing it.
func (s *DunningService) cancelSuperseded(ctx context.Context, sub *subscription.Subscription) error {
	if err := sub.Cancel(); err != nil {
		return apperrors.NewInvariantViolationError(err.Error())
	}
	if err := s.subscriptionRepo.Update(ctx, sub); err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	if err := s.provider.CancelSubscription(ctx, sub.ProviderSubscriptionID()); err != nil {
		return apperrors.NewProviderError("failed to cancel provider subscription", err.Error())
	}
	return nil
}

// RetryPayment makes one provider-side payment attempt on an invoice owned
// by the user. It bypasses the staged escalation.
func (s *DunningService) RetryPayment(ctx context.Context, userID uint, invoiceID string) (*billing.ProviderInvoice, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Errorw("failed to get user", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, apperrors.NewNotFoundError("user not found")
	}

	inv, err := s.provider.GetInvoice(ctx, invoiceID)
	if err != nil {
		s.logger.Errorw("failed to get invoice", "error", err, "invoice_id", invoiceID)
		return nil, apperrors.NewProviderError("failed to get invoice", err.Error())
	}
	if inv == nil {
		return nil, apperrors.NewNotFoundError("invoice not found", invoiceID)
	}
	if u.ProviderCustomerID() == "" || inv.CustomerID != u.ProviderCustomerID() {
		s.logger.Warnw("invoice retry by non-owner", "invoice_id", invoiceID, "user_id", userID)
		return nil, apperrors.NewForbiddenError("invoice does not belong to user")
	}
	if !inv.IsPayable() {
		return nil, apperrors.NewValidationError("invoice is not payable", "status: "+inv.Status)
	}

	paid, err := s.provider.PayInvoice(ctx, invoiceID)
	if err != nil {
		s.logger.Errorw("failed to pay invoice", "error", err, "invoice_id", invoiceID, "user_id", userID)
		return nil, apperrors.NewProviderError("payment attempt failed", err.Error())
	}

	s.logger.Infow("manual payment attempted", "invoice_id", invoiceID, "user_id", userID, "status", paid.Status)
	return paid, nil
}

func (s *DunningService) notify(ctx context.Context, sub *subscription.Subscription, template string, data map[string]any) {
	notify(ctx, s.userRepo, s.notifier, s.logger, sub, template, data)
}

func (s *DunningService) invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warnw("failed to invalidate limits cache", "error", err, "user_id", userID)
	}
}

// notify sends a best-effort email to the subscription owner.
func notify(ctx context.Context, users user.Repository, notifier notification.Notifier, log logger.Interface, sub *subscription.Subscription, template string, data map[string]any) {
	u, err := users.GetByID(ctx, sub.UserID())
	if err != nil || u == nil {
		log.Warnw("cannot notify subscription owner", "error", err, "subscription_id", sub.SID(), "user_id", sub.UserID())
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["subscription_id"] = sub.SID()

	err = notifier.Send(ctx, notification.Message{
		To:       u.Email(),
		Name:     u.DisplayName(),
		Template: template,
		Data:     data,
	})
	if err != nil {
		log.Warnw("failed to send billing notification",
			"error", err,
			"template", template,
			"subscription_id", sub.SID(),
		)
	}
}

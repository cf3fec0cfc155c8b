package usecases

import (
	"context"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/application/notification"
	"github.com/formcraft-io/formcraft/internal/domain/quota"
	"github.com/formcraft-io/formcraft/internal/domain/user"
	"github.com/formcraft-io/formcraft/internal/shared/biztime"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// NotificationGate sends the 80% and 100% usage notifications at most once
// per user and calendar month.
type NotificationGate struct {
	statusRepo quota.StatusRepository
	notifier   notification.Notifier
	metrics    Metrics
	logger     logger.Interface
}

func NewNotificationGate(statusRepo quota.StatusRepository, notifier notification.Notifier, logger logger.Interface) *NotificationGate {
	return &NotificationGate{
		statusRepo: statusRepo,
		notifier:   notifier,
		metrics:    nopMetrics{},
		logger:     logger,
	}
}

func (g *NotificationGate) SetMetrics(m Metrics) {
	if m != nil {
		g.metrics = m
	}
}

// CheckAndSendNotifications records the snapshot in the monthly status row
// and notifies for every threshold reached and not yet notified. A flag is
// only set once its notification was delivered, so a failed send is
// retried on the next check.
func (g *NotificationGate) CheckAndSendNotifications(ctx context.Context, u *user.User, snapshot quota.Snapshot) error {
	month := quota.MonthKeyOf(biztime.NowUTC())

	status, err := g.loadOrCreate(ctx, u.ID(), month)
	if err != nil {
		return err
	}

	status.RecordUsage(snapshot.Usage)

	for _, threshold := range status.PendingThresholds(snapshot.Percentages) {
		msg := g.buildMessage(u, threshold, snapshot, month)
		if err := g.notifier.Send(ctx, msg); err != nil {
			g.metrics.QuotaNotification(int(threshold), false)
			g.logger.Warnw("failed to send quota notification",
				"error", err,
				"user_id", u.ID(),
				"threshold", int(threshold),
				"month", month.String(),
			)
			continue
		}
		g.metrics.QuotaNotification(int(threshold), true)
		status.MarkNotified(threshold)
		g.logger.Infow("quota notification sent",
			"user_id", u.ID(),
			"threshold", int(threshold),
			"month", month.String(),
		)
	}

	if err := g.statusRepo.Update(ctx, status); err != nil {
		g.logger.Errorw("failed to update quota status", "error", err, "user_id", u.ID(), "month", month.String())
		return fmt.Errorf("failed to update quota status: %w", err)
	}
	return nil
}

func (g *NotificationGate) loadOrCreate(ctx context.Context, userID uint, month quota.MonthKey) (*quota.Status, error) {
	status, err := g.statusRepo.GetByUserAndMonth(ctx, userID, month)
	if err != nil {
		g.logger.Errorw("failed to get quota status", "error", err, "user_id", userID, "month", month.String())
		return nil, fmt.Errorf("failed to get quota status: %w", err)
	}
	if status != nil {
		return status, nil
	}

	status, err = quota.NewStatus(userID, month)
	if err != nil {
		return nil, err
	}
	if err := g.statusRepo.Create(ctx, status); err != nil {
		if !apperrors.IsDuplicateError(err) {
			g.logger.Errorw("failed to create quota status", "error", err, "user_id", userID, "month", month.String())
			return nil, fmt.Errorf("failed to create quota status: %w", err)
		}
		// A concurrent check created the row first.
		status, err = g.statusRepo.GetByUserAndMonth(ctx, userID, month)
		if err != nil {
			return nil, fmt.Errorf("failed to get quota status: %w", err)
		}
		if status == nil {
			return nil, fmt.Errorf("quota status for user %d in %s vanished after duplicate insert", userID, month)
		}
	}
	return status, nil
}

func (g *NotificationGate) buildMessage(u *user.User, threshold quota.Threshold, s quota.Snapshot, month quota.MonthKey) notification.Message {
	template := notification.TemplateQuotaWarning
	if threshold == quota.Threshold100 {
		template = notification.TemplateQuotaReached
	}
	return notification.Message{
		To:       u.Email(),
		Name:     u.DisplayName(),
		Template: template,
		Data: map[string]any{
			"threshold":           int(threshold),
			"month":               month.String(),
			"forms_count":         s.Usage.FormsCount,
			"max_forms":           s.Limits.MaxForms,
			"submissions_count":   s.Usage.SubmissionsCount,
			"max_submissions":     s.Limits.MaxSubmissionsPerMonth,
			"storage_used_mb":     s.Usage.StorageUsedMb,
			"max_storage_mb":      s.Limits.MaxStorageMb,
			"forms_percent":       s.Percentages.Forms,
			"submissions_percent": s.Percentages.Submissions,
			"storage_percent":     s.Percentages.Storage,
		},
	}
}

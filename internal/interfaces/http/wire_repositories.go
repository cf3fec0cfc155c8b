package http

import (
	"gorm.io/gorm"

	"github.com/formcraft-io/formcraft/internal/domain/billing"
	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/domain/quota"
	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/domain/user"
	"github.com/formcraft-io/formcraft/internal/infrastructure/repository"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	userRepo           user.Repository
	formRepo           form.Repository
	formVersionRepo    form.VersionRepository
	submissionRepo     form.SubmissionRepository
	planRepo           subscription.PlanRepository
	subscriptionRepo   subscription.Repository
	quotaStatusRepo    quota.StatusRepository
	paymentFailureRepo billing.PaymentFailureRepository
	webhookEventRepo   billing.WebhookEventRepository
}

// newRepositories creates all repository instances from the database connection.
func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		userRepo:           repository.NewUserRepository(db, log),
		formRepo:           repository.NewFormRepository(db, log),
		formVersionRepo:    repository.NewFormVersionRepository(db, log),
		submissionRepo:     repository.NewSubmissionRepository(db, log),
		planRepo:           repository.NewPlanRepository(db, log),
		subscriptionRepo:   repository.NewSubscriptionRepository(db, log),
		quotaStatusRepo:    repository.NewQuotaStatusRepository(db, log),
		paymentFailureRepo: repository.NewPaymentFailureRepository(db, log),
		webhookEventRepo:   repository.NewWebhookEventRepository(db, log),
	}
}

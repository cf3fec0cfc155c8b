package migration

import (
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.UserModel{},
		&models.FormModel{},
		&models.FormVersionModel{},
		&models.FormFieldModel{},
		&models.SubmissionModel{},
		&models.PlanModel{},
		&models.FeatureModel{},
		&models.PlanFeatureModel{},
		&models.SubscriptionModel{},
		&models.QuotaStatusModel{},
		&models.WebhookEventModel{},
		&models.PaymentFailureModel{},
	}
}

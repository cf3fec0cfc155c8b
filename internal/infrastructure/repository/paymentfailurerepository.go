package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/formcraft-io/formcraft/internal/domain/billing"
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/mappers"
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/models"
	"github.com/formcraft-io/formcraft/internal/shared/db"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

type PaymentFailureRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPaymentFailureRepository(db *gorm.DB, logger logger.Interface) billing.PaymentFailureRepository {
	return &PaymentFailureRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *PaymentFailureRepositoryImpl) Create(ctx context.Context, f *billing.PaymentFailure) error {
	model := mappers.PaymentFailureToModel(f)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create payment failure: %w", err)
	}
	f.ID = model.ID
	return nil
}

func (r *PaymentFailureRepositoryImpl) ListBySubscription(ctx context.Context, subscriptionID uint) ([]*billing.PaymentFailure, error) {
	var rows []*models.PaymentFailureModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list payment failures", "error", err, "subscription_id", subscriptionID)
		return nil, fmt.Errorf("failed to list payment failures: %w", err)
	}

	failures := make([]*billing.PaymentFailure, 0, len(rows))
	for _, row := range rows {
		failures = append(failures, mappers.PaymentFailureToEntity(row))
	}
	return failures, nil
}

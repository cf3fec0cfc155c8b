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

type WebhookEventRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewWebhookEventRepository(db *gorm.DB, logger logger.Interface) billing.WebhookEventRepository {
	return &WebhookEventRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *WebhookEventRepositoryImpl) Create(ctx context.Context, e *billing.WebhookEvent) error {
	model := mappers.WebhookEventToModel(e)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create webhook event: %w", err)
	}
	e.SetID(model.ID)
	return nil
}

func (r *WebhookEventRepositoryImpl) GetByProviderEventID(ctx context.Context, provider, eventID string) (*billing.WebhookEvent, error) {
	var model models.WebhookEventModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("provider = ? AND provider_event_id = ?", provider, eventID).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get webhook event", "error", err, "provider", provider, "event_id", eventID)
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}
	return mappers.WebhookEventToEntity(&model), nil
}

func (r *WebhookEventRepositoryImpl) Update(ctx context.Context, e *billing.WebhookEvent) error {
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.WebhookEventModel{}).
		Where("id = ?", e.ID()).
		Updates(map[string]any{
			"status":           string(e.Status()),
			"processing_error": e.ProcessingError(),
			"processed_at":     e.ProcessedAt(),
		}).Error; err != nil {
		r.logger.Errorw("failed to update webhook event", "error", err, "id", e.ID())
		return fmt.Errorf("failed to update webhook event: %w", err)
	}
	return nil
}

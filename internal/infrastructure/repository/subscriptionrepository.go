package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/mappers"
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/models"
	"github.com/formcraft-io/formcraft/internal/shared/db"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(db *gorm.DB, logger logger.Interface) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, s *subscription.Subscription) error {
	model := r.mapper.ToModel(s)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription in database", "error", err, "user_id", model.UserID)
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	s.SetID(model.ID)

	r.logger.Infow("subscription created successfully", "id", model.ID, "user_id", model.UserID, "plan_id", model.PlanID)
	return nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, s *subscription.Subscription) error {
	model := r.mapper.ToModel(s)
	result := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"plan_id":                  model.PlanID,
			"status":                   model.Status,
			"start_date":               model.StartDate,
			"end_date":                 model.EndDate,
			"provider_subscription_id": model.ProviderSubscriptionID,
			"suspended_at":             model.SuspendedAt,
			"cancelled_at":             model.CancelledAt,
			"version":                  model.Version,
			"updated_at":               model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "error", result.Error, "id", model.ID)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("subscription %d not found", model.ID)
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("id = ?", id), "id", id)
}

func (r *SubscriptionRepositoryImpl) GetByProviderSubscriptionID(ctx context.Context, providerID string) (*subscription.Subscription, error) {
	if providerID == "" {
		return nil, nil
	}
	return r.first(db.GetTxFromContext(ctx, r.db).Where("provider_subscription_id = ?", providerID), "provider_subscription_id", providerID)
}

func (r *SubscriptionRepositoryImpl) GetActiveByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND status = ?", userID, subscription.StatusActive.String()).
		Order("created_at DESC, id DESC")
	return r.first(query, "user_id", userID)
}

func (r *SubscriptionRepositoryImpl) GetLatestByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	return r.first(query, "user_id", userID)
}

func (r *SubscriptionRepositoryImpl) ListActiveByUserID(ctx context.Context, userID uint) ([]*subscription.Subscription, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Scopes(db.ForUpdate(ctx)).
		Where("user_id = ? AND status = ?", userID, subscription.StatusActive.String()).
		Order("id ASC")
	return r.find(query, "user_id", userID)
}

func (r *SubscriptionRepositoryImpl) ListSuspendedBefore(ctx context.Context, cutoff time.Time) ([]*subscription.Subscription, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND suspended_at IS NOT NULL AND suspended_at <= ?", subscription.StatusSuspended.String(), cutoff).
		Order("suspended_at ASC")
	return r.find(query, "cutoff", cutoff)
}

func (r *SubscriptionRepositoryImpl) first(query *gorm.DB, key string, value any) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := query.First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription", "error", err, key, value)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map subscription model to entity", "error", err, key, value)
		return nil, fmt.Errorf("failed to map subscription: %w", err)
	}
	return entity, nil
}

func (r *SubscriptionRepositoryImpl) find(query *gorm.DB, key string, value any) ([]*subscription.Subscription, error) {
	var subscriptionModels []*models.SubscriptionModel
	if err := query.Find(&subscriptionModels).Error; err != nil {
		r.logger.Errorw("failed to list subscriptions", "error", err, key, value)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	entities, err := r.mapper.ToEntities(subscriptionModels)
	if err != nil {
		r.logger.Errorw("failed to map subscription models to entities", "error", err, key, value)
		return nil, fmt.Errorf("failed to map subscriptions: %w", err)
	}
	return entities, nil
}

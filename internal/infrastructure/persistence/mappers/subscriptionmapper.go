package mappers

import (
	"fmt"
	"time"

	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/models"
	"github.com/formcraft-io/formcraft/internal/shared/mapper"
)

type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) *models.SubscriptionModel
	ToEntities(models []*models.SubscriptionModel) ([]*subscription.Subscription, error)
}

type SubscriptionMapperImpl struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &SubscriptionMapperImpl{}
}

func (m *SubscriptionMapperImpl) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	var endDate time.Time
	if model.EndDate != nil {
		endDate = *model.EndDate
	}

	entity, err := subscription.ReconstructSubscription(
		model.ID,
		model.SID,
		model.UserID,
		model.PlanID,
		subscription.Status(model.Status),
		model.StartDate,
		endDate,
		derefString(model.ProviderSubscriptionID),
		model.SuspendedAt,
		model.CancelledAt,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription entity: %w", err)
	}
	return entity, nil
}

func (m *SubscriptionMapperImpl) ToModel(entity *subscription.Subscription) *models.SubscriptionModel {
	if entity == nil {
		return nil
	}
	model := &models.SubscriptionModel{
		ID:                     entity.ID(),
		SID:                    entity.SID(),
		UserID:                 entity.UserID(),
		PlanID:                 entity.PlanID(),
		Status:                 entity.Status().String(),
		StartDate:              entity.StartDate(),
		ProviderSubscriptionID: nilIfEmpty(entity.ProviderSubscriptionID()),
		SuspendedAt:            entity.SuspendedAt(),
		CancelledAt:            entity.CancelledAt(),
		Version:                entity.Version(),
		CreatedAt:              entity.CreatedAt(),
		UpdatedAt:              entity.UpdatedAt(),
	}
	if end := entity.EndDate(); !end.IsZero() {
		model.EndDate = &end
	}
	return model
}

func (m *SubscriptionMapperImpl) ToEntities(items []*models.SubscriptionModel) ([]*subscription.Subscription, error) {
	return mapper.MapSlicePtrWithID(items, m.ToEntity, func(s *models.SubscriptionModel) uint { return s.ID })
}

// PlanToEntity converts a plan row; features are attached separately.
func PlanToEntity(model *models.PlanModel, features []subscription.Feature) *subscription.Plan {
	if model == nil {
		return nil
	}
	return subscription.ReconstructPlan(
		model.ID,
		model.Slug,
		model.Name,
		model.Price,
		model.Currency,
		derefString(model.ProviderProductID),
		derefString(model.ProviderPriceID),
		subscription.PlanLimits{
			MaxForms:               model.MaxForms,
			MaxSubmissionsPerMonth: model.MaxSubmissionsPerMonth,
			MaxStorageMb:           model.MaxStorageMb,
		},
		features,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func PlanToModel(entity *subscription.Plan) *models.PlanModel {
	limits := entity.Limits()
	return &models.PlanModel{
		ID:                     entity.ID(),
		Slug:                   entity.Slug(),
		Name:                   entity.Name(),
		Price:                  entity.Price(),
		Currency:               entity.Currency(),
		ProviderProductID:      nilIfEmpty(entity.ProviderProductID()),
		ProviderPriceID:        nilIfEmpty(entity.ProviderPriceID()),
		MaxForms:               limits.MaxForms,
		MaxSubmissionsPerMonth: limits.MaxSubmissionsPerMonth,
		MaxStorageMb:           limits.MaxStorageMb,
		CreatedAt:              entity.CreatedAt(),
		UpdatedAt:              entity.UpdatedAt(),
	}
}

package mappers

import (
	"fmt"

	"github.com/formcraft-io/formcraft/internal/domain/billing"
	"github.com/formcraft-io/formcraft/internal/domain/quota"
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/models"
)

func QuotaStatusToEntity(model *models.QuotaStatusModel) (*quota.Status, error) {
	if model == nil {
		return nil, nil
	}
	month, err := quota.ParseMonthKey(model.MonthKey)
	if err != nil {
		return nil, fmt.Errorf("failed to map quota status %d: %w", model.ID, err)
	}
	return quota.ReconstructStatus(
		model.ID,
		model.UserID,
		month,
		model.FormCount,
		model.SubmissionCount,
		model.StorageUsedMb,
		model.Notified80,
		model.Notified100,
		model.CreatedAt,
		model.UpdatedAt,
	), nil
}

func QuotaStatusToModel(entity *quota.Status) *models.QuotaStatusModel {
	return &models.QuotaStatusModel{
		ID:              entity.ID(),
		UserID:          entity.UserID(),
		MonthKey:        entity.Month().String(),
		FormCount:       entity.FormCount(),
		SubmissionCount: entity.SubmissionCount(),
		StorageUsedMb:   entity.StorageUsedMb(),
		Notified80:      entity.Notified80(),
		Notified100:     entity.Notified100(),
		CreatedAt:       entity.CreatedAt(),
		UpdatedAt:       entity.UpdatedAt(),
	}
}

func WebhookEventToEntity(model *models.WebhookEventModel) *billing.WebhookEvent {
	if model == nil {
		return nil
	}
	return billing.ReconstructWebhookEvent(
		model.ID,
		model.Provider,
		model.ProviderEventID,
		model.EventType,
		model.Payload,
		billing.WebhookEventStatus(model.Status),
		model.ProcessingError,
		model.ProcessedAt,
		model.CreatedAt,
	)
}

func WebhookEventToModel(entity *billing.WebhookEvent) *models.WebhookEventModel {
	return &models.WebhookEventModel{
		ID:              entity.ID(),
		Provider:        entity.Provider(),
		ProviderEventID: entity.ProviderEventID(),
		EventType:       entity.EventType(),
		Payload:         entity.Payload(),
		Status:          string(entity.Status()),
		ProcessingError: entity.ProcessingError(),
		ProcessedAt:     entity.ProcessedAt(),
		CreatedAt:       entity.CreatedAt(),
	}
}

func PaymentFailureToEntity(model *models.PaymentFailureModel) *billing.PaymentFailure {
	return &billing.PaymentFailure{
		ID:                model.ID,
		SubscriptionID:    model.SubscriptionID,
		ProviderInvoiceID: model.ProviderInvoiceID,
		Attempt:           model.Attempt,
		Stage:             billing.Stage(model.Stage),
		RetryAt:           model.RetryAt,
		DowngradeAt:       model.DowngradeAt,
		CreatedAt:         model.CreatedAt,
	}
}

func PaymentFailureToModel(entity *billing.PaymentFailure) *models.PaymentFailureModel {
	return &models.PaymentFailureModel{
		ID:                entity.ID,
		SubscriptionID:    entity.SubscriptionID,
		ProviderInvoiceID: entity.ProviderInvoiceID,
		Attempt:           entity.Attempt,
		Stage:             string(entity.Stage),
		RetryAt:           entity.RetryAt,
		DowngradeAt:       entity.DowngradeAt,
		CreatedAt:         entity.CreatedAt,
	}
}

package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/formcraft-io/formcraft/internal/domain/quota"
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/mappers"
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/models"
	"github.com/formcraft-io/formcraft/internal/shared/db"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

type QuotaStatusRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewQuotaStatusRepository(db *gorm.DB, logger logger.Interface) quota.StatusRepository {
	return &QuotaStatusRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *QuotaStatusRepositoryImpl) GetByUserAndMonth(ctx context.Context, userID uint, month quota.MonthKey) (*quota.Status, error) {
	var model models.QuotaStatusModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND month_key = ?", userID, month.String()).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get quota status", "error", err, "user_id", userID, "month", month.String())
		return nil, fmt.Errorf("failed to get quota status: %w", err)
	}
	return mappers.QuotaStatusToEntity(&model)
}

func (r *QuotaStatusRepositoryImpl) Create(ctx context.Context, s *quota.Status) error {
	model := mappers.QuotaStatusToModel(s)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		// duplicates are expected when two checks race on the first of the month
		return fmt.Errorf("failed to create quota status: %w", err)
	}
	s.SetID(model.ID)
	return nil
}

// Update never clears a notified flag already stored by a concurrent writer.
func (r *QuotaStatusRepositoryImpl) Update(ctx context.Context, s *quota.Status) error {
	updates := map[string]any{
		"form_count":       s.FormCount(),
		"submission_count": s.SubmissionCount(),
		"storage_used_mb":  s.StorageUsedMb(),
		"updated_at":       s.UpdatedAt(),
	}
	if s.Notified80() {
		updates["notified80"] = true
	}
	if s.Notified100() {
		updates["notified100"] = true
	}

	if err := db.GetTxFromContext(ctx, r.db).Model(&models.QuotaStatusModel{}).
		Where("id = ?", s.ID()).
		Updates(updates).Error; err != nil {
		r.logger.Errorw("failed to update quota status", "error", err, "id", s.ID(), "user_id", s.UserID())
		return fmt.Errorf("failed to update quota status: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/mappers"
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/models"
	"github.com/formcraft-io/formcraft/internal/shared/db"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

type FormRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.FormMapper
	logger logger.Interface
}

func NewFormRepository(db *gorm.DB, logger logger.Interface) form.Repository {
	return &FormRepositoryImpl{
		db:     db,
		mapper: mappers.NewFormMapper(),
		logger: logger,
	}
}

func (r *FormRepositoryImpl) Create(ctx context.Context, f *form.Form) error {
	model := r.mapper.ToModel(f)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create form in database", "error", err, "owner_id", f.OwnerID())
		return fmt.Errorf("failed to create form: %w", err)
	}
	f.SetID(model.ID)
	return nil
}

func (r *FormRepositoryImpl) Update(ctx context.Context, f *form.Form) error {
	model := r.mapper.ToModel(f)
	result := db.GetTxFromContext(ctx, r.db).Model(&models.FormModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"title":           model.Title,
			"description":     model.Description,
			"status":          model.Status,
			"current_version": model.CurrentVersion,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update form", "error", result.Error, "id", model.ID)
		return fmt.Errorf("failed to update form: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("form %d not found", model.ID)
	}
	return nil
}

// Delete soft-deletes the form. Versions and submissions stay for audit.
func (r *FormRepositoryImpl) Delete(ctx context.Context, id uint) error {
	if err := db.GetTxFromContext(ctx, r.db).Delete(&models.FormModel{}, id).Error; err != nil {
		r.logger.Errorw("failed to delete form", "error", err, "id", id)
		return fmt.Errorf("failed to delete form: %w", err)
	}
	return nil
}

func (r *FormRepositoryImpl) GetByID(ctx context.Context, id uint) (*form.Form, error) {
	return r.first(ctx, db.GetTxFromContext(ctx, r.db).Where("id = ?", id), "id", id)
}

func (r *FormRepositoryImpl) GetBySID(ctx context.Context, sid string) (*form.Form, error) {
	return r.first(ctx, db.GetTxFromContext(ctx, r.db).Where("sid = ?", sid), "sid", sid)
}

func (r *FormRepositoryImpl) GetBySIDForUpdate(ctx context.Context, sid string) (*form.Form, error) {
	query := db.GetTxFromContext(ctx, r.db).Scopes(db.ForUpdate(ctx)).Where("sid = ?", sid)
	return r.first(ctx, query, "sid", sid)
}

func (r *FormRepositoryImpl) first(_ context.Context, query *gorm.DB, key string, value any) (*form.Form, error) {
	var model models.FormModel
	if err := query.First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get form", "error", err, key, value)
		return nil, fmt.Errorf("failed to get form: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map form model to entity", "error", err, key, value)
		return nil, fmt.Errorf("failed to map form: %w", err)
	}
	return entity, nil
}

// List returns one page of the owner's forms, newest first, and the total
// count of the filtered set.
func (r *FormRepositoryImpl) List(ctx context.Context, filter form.ListFilter) ([]*form.Form, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.FormModel{}).Where("owner_id = ?", filter.OwnerID)
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count forms", "error", err, "owner_id", filter.OwnerID)
		return nil, 0, fmt.Errorf("failed to count forms: %w", err)
	}

	var formModels []*models.FormModel
	if err := query.Scopes(db.Paginate(filter.Page, filter.PageSize)).
		Order("created_at DESC, id DESC").
		Find(&formModels).Error; err != nil {
		r.logger.Errorw("failed to list forms", "error", err, "owner_id", filter.OwnerID)
		return nil, 0, fmt.Errorf("failed to list forms: %w", err)
	}

	entities, err := r.mapper.ToEntities(formModels)
	if err != nil {
		r.logger.Errorw("failed to map form models to entities", "error", err)
		return nil, 0, fmt.Errorf("failed to map forms: %w", err)
	}
	return entities, total, nil
}

func (r *FormRepositoryImpl) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.FormModel{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		r.logger.Errorw("failed to count forms by owner", "error", err, "owner_id", ownerID)
		return 0, fmt.Errorf("failed to count forms: %w", err)
	}
	return count, nil
}

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

type FormVersionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.FormMapper
	logger logger.Interface
}

func NewFormVersionRepository(db *gorm.DB, logger logger.Interface) form.VersionRepository {
	return &FormVersionRepositoryImpl{
		db:     db,
		mapper: mappers.NewFormMapper(),
		logger: logger,
	}
}

// Create inserts the version row and its field rows in one statement batch.
func (r *FormVersionRepositoryImpl) Create(ctx context.Context, v *form.Version) error {
	model, err := r.mapper.VersionToModel(v)
	if err != nil {
		r.logger.Errorw("failed to map form version entity to model", "error", err, "form_id", v.FormID())
		return fmt.Errorf("failed to map form version: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create form version",
			"error", err,
			"form_id", v.FormID(),
			"version_number", v.VersionNumber(),
		)
		return fmt.Errorf("failed to create form version: %w", err)
	}

	v.SetID(model.ID)
	fields := v.Fields()
	for i := range fields {
		if i < len(model.Fields) {
			fields[i].ID = model.Fields[i].ID
		}
	}
	v.SetFields(fields)
	return nil
}

func (r *FormVersionRepositoryImpl) GetByNumber(ctx context.Context, formID uint, versionNumber int) (*form.Version, error) {
	var model models.FormVersionModel
	err := db.GetTxFromContext(ctx, r.db).
		Preload("Fields", orderFieldsByPosition).
		Where("form_id = ? AND version_number = ?", formID, versionNumber).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get form version", "error", err, "form_id", formID, "version_number", versionNumber)
		return nil, fmt.Errorf("failed to get form version: %w", err)
	}
	return r.mapper.VersionToEntity(&model)
}

func (r *FormVersionRepositoryImpl) GetLatest(ctx context.Context, formID uint) (*form.Version, error) {
	var model models.FormVersionModel
	err := db.GetTxFromContext(ctx, r.db).
		Preload("Fields", orderFieldsByPosition).
		Where("form_id = ?", formID).
		Order("version_number DESC").
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get latest form version", "error", err, "form_id", formID)
		return nil, fmt.Errorf("failed to get latest form version: %w", err)
	}
	return r.mapper.VersionToEntity(&model)
}

// ListByForm returns versions newest first.
func (r *FormVersionRepositoryImpl) ListByForm(ctx context.Context, formID uint) ([]*form.Version, error) {
	var versionModels []*models.FormVersionModel
	if err := db.GetTxFromContext(ctx, r.db).
		Preload("Fields", orderFieldsByPosition).
		Where("form_id = ?", formID).
		Order("version_number DESC").
		Find(&versionModels).Error; err != nil {
		r.logger.Errorw("failed to list form versions", "error", err, "form_id", formID)
		return nil, fmt.Errorf("failed to list form versions: %w", err)
	}

	entities, err := r.mapper.VersionsToEntities(versionModels)
	if err != nil {
		r.logger.Errorw("failed to map form versions", "error", err, "form_id", formID)
		return nil, fmt.Errorf("failed to map form versions: %w", err)
	}
	return entities, nil
}

func (r *FormVersionRepositoryImpl) Count(ctx context.Context, formID uint) (int64, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.FormVersionModel{}).
		Where("form_id = ?", formID).
		Count(&count).Error; err != nil {
		r.logger.Errorw("failed to count form versions", "error", err, "form_id", formID)
		return 0, fmt.Errorf("failed to count form versions: %w", err)
	}
	return count, nil
}

func (r *FormVersionRepositoryImpl) MaxVersionNumber(ctx context.Context, formID uint) (int, error) {
	var max *int
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.FormVersionModel{}).
		Select("MAX(version_number)").
		Where("form_id = ?", formID).
		Scan(&max).Error; err != nil {
		r.logger.Errorw("failed to get max version number", "error", err, "form_id", formID)
		return 0, fmt.Errorf("failed to get max version number: %w", err)
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *FormVersionRepositoryImpl) DeleteOldest(ctx context.Context, formID uint, n int) error {
	if n <= 0 {
		return nil
	}
	tx := db.GetTxFromContext(ctx, r.db)

	var ids []uint
	if err := tx.Model(&models.FormVersionModel{}).
		Where("form_id = ?", formID).
		Order("version_number ASC").
		Limit(n).
		Pluck("id", &ids).Error; err != nil {
		r.logger.Errorw("failed to select oldest form versions", "error", err, "form_id", formID)
		return fmt.Errorf("failed to select oldest form versions: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	return r.deleteByIDs(tx, formID, ids)
}

func (r *FormVersionRepositoryImpl) Delete(ctx context.Context, formID uint, versionNumber int) error {
	tx := db.GetTxFromContext(ctx, r.db)

	var ids []uint
	if err := tx.Model(&models.FormVersionModel{}).
		Where("form_id = ? AND version_number = ?", formID, versionNumber).
		Pluck("id", &ids).Error; err != nil {
		r.logger.Errorw("failed to find form version", "error", err, "form_id", formID, "version_number", versionNumber)
		return fmt.Errorf("failed to find form version: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	return r.deleteByIDs(tx, formID, ids)
}

// deleteByIDs removes field rows explicitly since SQLite does not enforce
// the cascade without the foreign_keys pragma.
func (r *FormVersionRepositoryImpl) deleteByIDs(tx *gorm.DB, formID uint, ids []uint) error {
	if err := tx.Where("version_id IN ?", ids).Delete(&models.FormFieldModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete form fields", "error", err, "form_id", formID)
		return fmt.Errorf("failed to delete form fields: %w", err)
	}
	if err := tx.Where("id IN ?", ids).Delete(&models.FormVersionModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete form versions", "error", err, "form_id", formID)
		return fmt.Errorf("failed to delete form versions: %w", err)
	}
	r.logger.Infow("form versions deleted", "form_id", formID, "count", len(ids))
	return nil
}

func orderFieldsByPosition(tx *gorm.DB) *gorm.DB {
	return tx.Order("position ASC, id ASC")
}

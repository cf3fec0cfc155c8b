package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/mappers"
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/models"
	"github.com/formcraft-io/formcraft/internal/shared/constants"
	"github.com/formcraft-io/formcraft/internal/shared/db"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

const submissionBatchSize = 500

type SubmissionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.FormMapper
	logger logger.Interface
}

func NewSubmissionRepository(db *gorm.DB, logger logger.Interface) form.SubmissionRepository {
	return &SubmissionRepositoryImpl{
		db:     db,
		mapper: mappers.NewFormMapper(),
		logger: logger,
	}
}

func (r *SubmissionRepositoryImpl) Create(ctx context.Context, s *form.Submission) error {
	model, err := r.mapper.SubmissionToModel(s)
	if err != nil {
		r.logger.Errorw("failed to map submission entity to model", "error", err, "form_id", s.FormID())
		return fmt.Errorf("failed to map submission: %w", err)
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create submission", "error", err, "form_id", s.FormID())
		return fmt.Errorf("failed to create submission: %w", err)
	}
	s.SetID(model.ID)
	return nil
}

// ListByForm returns one page of submissions, newest first.
func (r *SubmissionRepositoryImpl) ListByForm(ctx context.Context, formID uint, page, pageSize int) ([]*form.Submission, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.SubmissionModel{}).Where("form_id = ?", formID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count submissions", "error", err, "form_id", formID)
		return nil, 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	var rows []*models.SubmissionModel
	if err := query.Scopes(db.Paginate(page, pageSize)).
		Order("submitted_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list submissions", "error", err, "form_id", formID)
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	entities := make([]*form.Submission, 0, len(rows))
	for _, row := range rows {
		entity, err := r.mapper.SubmissionToEntity(row)
		if err != nil {
			r.logger.Errorw("failed to map submission", "error", err, "id", row.ID)
			return nil, 0, fmt.Errorf("failed to map submission %d: %w", row.ID, err)
		}
		entities = append(entities, entity)
	}
	return entities, total, nil
}

// Iterate walks the form's submissions oldest first in fixed-size batches
// so exports do not hold the whole table in memory.
func (r *SubmissionRepositoryImpl) Iterate(ctx context.Context, formID uint, fn func(*form.Submission) error) error {
	var rows []*models.SubmissionModel
	result := db.GetTxFromContext(ctx, r.db).
		Where("form_id = ?", formID).
		Order("id ASC").
		FindInBatches(&rows, submissionBatchSize, func(_ *gorm.DB, _ int) error {
			for _, row := range rows {
				entity, err := r.mapper.SubmissionToEntity(row)
				if err != nil {
					return fmt.Errorf("failed to map submission %d: %w", row.ID, err)
				}
				if err := fn(entity); err != nil {
					return err
				}
			}
			return nil
		})
	if result.Error != nil {
		r.logger.Errorw("failed to iterate submissions", "error", result.Error, "form_id", formID)
		return result.Error
	}
	return nil
}

// CountByOwnerSince counts submissions across every form of the owner,
// soft-deleted forms included.
func (r *SubmissionRepositoryImpl) CountByOwnerSince(ctx context.Context, ownerID uint, since time.Time) (int64, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Table(constants.TableSubmissions+" s").
		Joins("JOIN "+constants.TableForms+" f ON f.id = s.form_id").
		Where("f.owner_id = ? AND s.submitted_at >= ?", ownerID, since).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to count submissions by owner", "error", err, "owner_id", ownerID)
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

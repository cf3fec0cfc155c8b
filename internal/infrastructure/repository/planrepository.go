package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/mappers"
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/models"
	"github.com/formcraft-io/formcraft/internal/shared/constants"
	"github.com/formcraft-io/formcraft/internal/shared/db"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// PlanRepositoryImpl implements subscription.PlanRepository
type PlanRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPlanRepository(db *gorm.DB, logger logger.Interface) subscription.PlanRepository {
	return &PlanRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, p *subscription.Plan) error {
	model := mappers.PlanToModel(p)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create plan", "error", err, "slug", p.Slug())
		return fmt.Errorf("failed to create plan: %w", err)
	}
	p.SetID(model.ID)
	return nil
}

func (r *PlanRepositoryImpl) Update(ctx context.Context, p *subscription.Plan) error {
	model := mappers.PlanToModel(p)
	result := db.GetTxFromContext(ctx, r.db).Model(&models.PlanModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"name":                      model.Name,
			"price":                     model.Price,
			"currency":                  model.Currency,
			"provider_product_id":       model.ProviderProductID,
			"provider_price_id":         model.ProviderPriceID,
			"max_forms":                 model.MaxForms,
			"max_submissions_per_month": model.MaxSubmissionsPerMonth,
			"max_storage_mb":            model.MaxStorageMb,
			"updated_at":                model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update plan", "error", result.Error, "id", model.ID)
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}
	return nil
}

func (r *PlanRepositoryImpl) GetByID(ctx context.Context, id uint) (*subscription.Plan, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PlanRepositoryImpl) GetBySlug(ctx context.Context, slug string) (*subscription.Plan, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *PlanRepositoryImpl) GetByProviderPriceID(ctx context.Context, priceID string) (*subscription.Plan, error) {
	if priceID == "" {
		return nil, nil
	}
	return r.first(ctx, "provider_price_id = ?", priceID)
}

func (r *PlanRepositoryImpl) first(ctx context.Context, cond string, arg any) (*subscription.Plan, error) {
	var model models.PlanModel
	if err := db.GetTxFromContext(ctx, r.db).Where(cond, arg).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get plan", "error", err, "query", cond)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return mappers.PlanToEntity(&model, nil), nil
}

// List returns all plans ordered by price.
func (r *PlanRepositoryImpl) List(ctx context.Context) ([]*subscription.Plan, error) {
	var planModels []*models.PlanModel
	if err := db.GetTxFromContext(ctx, r.db).Order("price ASC, id ASC").Find(&planModels).Error; err != nil {
		r.logger.Errorw("failed to list plans", "error", err)
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	plans := make([]*subscription.Plan, 0, len(planModels))
	for _, m := range planModels {
		plans = append(plans, mappers.PlanToEntity(m, nil))
	}
	return plans, nil
}

type planFeatureRow struct {
	Key      string `gorm:"column:feature_key"`
	Name     string `gorm:"column:feature_name"`
	Value    string `gorm:"column:feature_value"`
	Position int    `gorm:"column:position"`
}

// GetFeatures loads the plan's features with one join over plan_features
// and features.
func (r *PlanRepositoryImpl) GetFeatures(ctx context.Context, planID uint) ([]subscription.Feature, error) {
	var rows []planFeatureRow
	err := db.GetTxFromContext(ctx, r.db).
		Table(constants.TablePlanFeatures+" pf").
		Select("f.feature_key AS feature_key, f.name AS feature_name, pf.value AS feature_value, pf.position AS position").
		Joins("JOIN "+constants.TableFeatures+" f ON f.id = pf.feature_id").
		Where("pf.plan_id = ?", planID).
		Order("pf.position ASC, f.id ASC").
		Scan(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to get plan features", "error", err, "plan_id", planID)
		return nil, fmt.Errorf("failed to get plan features: %w", err)
	}

	features := make([]subscription.Feature, 0, len(rows))
	for _, row := range rows {
		features = append(features, subscription.Feature(row))
	}
	return features, nil
}

// ReplaceFeatures upserts feature definitions by key and rewrites the
// plan's feature links.
func (r *PlanRepositoryImpl) ReplaceFeatures(ctx context.Context, planID uint, features []subscription.Feature) error {
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("plan_id = ?", planID).Delete(&models.PlanFeatureModel{}).Error; err != nil {
		r.logger.Errorw("failed to clear plan features", "error", err, "plan_id", planID)
		return fmt.Errorf("failed to clear plan features: %w", err)
	}

	for i, f := range features {
		feature := models.FeatureModel{Key: f.Key, Name: f.Name}
		if err := tx.Where(models.FeatureModel{Key: f.Key}).
			Assign(models.FeatureModel{Name: f.Name}).
			FirstOrCreate(&feature).Error; err != nil {
			r.logger.Errorw("failed to upsert feature", "error", err, "key", f.Key)
			return fmt.Errorf("failed to upsert feature %s: %w", f.Key, err)
		}

		position := f.Position
		if position == 0 {
			position = i + 1
		}
		link := models.PlanFeatureModel{
			PlanID:    planID,
			FeatureID: feature.ID,
			Value:     f.Value,
			Position:  position,
		}
		if err := tx.Create(&link).Error; err != nil {
			r.logger.Errorw("failed to link plan feature", "error", err, "plan_id", planID, "key", f.Key)
			return fmt.Errorf("failed to link plan feature %s: %w", f.Key, err)
		}
	}
	return nil
}

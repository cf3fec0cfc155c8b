package migration

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/shared/db"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// PlanSeed is one plan entry of the seed catalog.
type PlanSeed struct {
	Slug                   string        `yaml:"slug"`
	Name                   string        `yaml:"name"`
	Price                  string        `yaml:"price"`
	Currency               string        `yaml:"currency"`
	ProviderProductID      string        `yaml:"provider_product_id"`
	ProviderPriceID        string        `yaml:"provider_price_id"`
	MaxForms               int64         `yaml:"max_forms"`
	MaxSubmissionsPerMonth int64         `yaml:"max_submissions_per_month"`
	MaxStorageMb           int64         `yaml:"max_storage_mb"`
	Features               []FeatureSeed `yaml:"features"`
}

type FeatureSeed struct {
	Key   string `yaml:"key"`
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type SeedCatalog struct {
	Plans []PlanSeed `yaml:"plans"`
}

// ParseSeedCatalog decodes a YAML catalog and rejects unknown keys.
func ParseSeedCatalog(r io.Reader) (*SeedCatalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var catalog SeedCatalog
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to decode seed catalog: %w", err)
	}
	return &catalog, nil
}

// PlanSeeder upserts plans by slug and rewrites their feature lists.
type PlanSeeder struct {
	planRepo  subscription.PlanRepository
	txManager db.Transactor
	logger    logger.Interface
}

func NewPlanSeeder(planRepo subscription.PlanRepository, txManager db.Transactor, logger logger.Interface) *PlanSeeder {
	return &PlanSeeder{
		planRepo:  planRepo,
		txManager: txManager,
		logger:    logger,
	}
}

func (s *PlanSeeder) SeedFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	catalog, err := ParseSeedCatalog(f)
	if err != nil {
		return 0, err
	}
	return s.Seed(ctx, catalog)
}

// Seed applies the catalog in one transaction and returns the number of
// plans written.
func (s *PlanSeeder) Seed(ctx context.Context, catalog *SeedCatalog) (int, error) {
	count := 0
	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		for _, ps := range catalog.Plans {
			if err := s.seedPlan(txCtx, ps); err != nil {
				return fmt.Errorf("plan %s: %w", ps.Slug, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		s.logger.Errorw("failed to seed plans", "error", err)
		return 0, err
	}

	s.logger.Infow("plans seeded", "count", count)
	return count, nil
}

func (s *PlanSeeder) seedPlan(ctx context.Context, ps PlanSeed) error {
	price, err := decimal.NewFromString(ps.Price)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", ps.Price, err)
	}
	limits := subscription.PlanLimits{
		MaxForms:               ps.MaxForms,
		MaxSubmissionsPerMonth: ps.MaxSubmissionsPerMonth,
		MaxStorageMb:           ps.MaxStorageMb,
	}

	fresh, err := subscription.NewPlan(ps.Slug, ps.Name, price, ps.Currency, limits)
	if err != nil {
		return err
	}
	fresh.LinkProvider(ps.ProviderProductID, ps.ProviderPriceID)

	existing, err := s.planRepo.GetBySlug(ctx, ps.Slug)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := s.planRepo.Create(ctx, fresh); err != nil {
			return err
		}
	} else {
		fresh.SetID(existing.ID())
		if err := s.planRepo.Update(ctx, fresh); err != nil {
			return err
		}
	}

	features := make([]subscription.Feature, 0, len(ps.Features))
	for i, f := range ps.Features {
		features = append(features, subscription.Feature{
			Key:      f.Key,
			Name:     f.Name,
			Value:    f.Value,
			Position: i + 1,
		})
	}
	return s.planRepo.ReplaceFeatures(ctx, fresh.ID(), features)
}

package subscription

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Feature is a flat plan capability row produced by the
// plan → plan_features → features join.
type Feature struct {
	Key      string
	Name     string
	Value    string
	Position int
}

// PlanLimits groups the three quota ceilings of a plan.
type PlanLimits struct {
	MaxForms               int64
	MaxSubmissionsPerMonth int64
	MaxStorageMb           int64
}

// Validate rejects non-positive limits; percentages divide by them.
func (l PlanLimits) Validate() error {
	if l.MaxForms <= 0 || l.MaxSubmissionsPerMonth <= 0 || l.MaxStorageMb <= 0 {
		return ErrInvalidPlanLimits
	}
	return nil
}

// Plan is a billing tier with hard usage limits.
type Plan struct {
	id                uint
	slug              string
	name              string
	price             decimal.Decimal
	currency          string
	providerProductID string
	providerPriceID   string
	limits            PlanLimits
	features          []Feature
	createdAt         time.Time
	updatedAt         time.Time
}

func NewPlan(slug, name string, price decimal.Decimal, currency string, limits PlanLimits) (*Plan, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("plan slug is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("plan price cannot be negative")
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Plan{
		slug:      slug,
		name:      name,
		price:     price,
		currency:  strings.ToUpper(currency),
		limits:    limits,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructPlan(
	id uint,
	slug, name string,
	price decimal.Decimal,
	currency, providerProductID, providerPriceID string,
	limits PlanLimits,
	features []Feature,
	createdAt, updatedAt time.Time,
) *Plan {
	return &Plan{
		id:                id,
		slug:              slug,
		name:              name,
		price:             price,
		currency:          currency,
		providerProductID: providerProductID,
		providerPriceID:   providerPriceID,
		limits:            limits,
		features:          features,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func (p *Plan) ID() uint                  { return p.id }
func (p *Plan) Slug() string              { return p.slug }
func (p *Plan) Name() string              { return p.name }
func (p *Plan) Price() decimal.Decimal    { return p.price }
func (p *Plan) Currency() string          { return p.currency }
func (p *Plan) ProviderProductID() string { return p.providerProductID }
func (p *Plan) ProviderPriceID() string   { return p.providerPriceID }
func (p *Plan) Limits() PlanLimits        { return p.limits }
func (p *Plan) Features() []Feature       { return p.features }
func (p *Plan) CreatedAt() time.Time      { return p.createdAt }
func (p *Plan) UpdatedAt() time.Time      { return p.updatedAt }

// IsFree reports whether the plan costs nothing.
func (p *Plan) IsFree() bool {
	return p.price.IsZero()
}

func (p *Plan) SetID(id uint) {
	p.id = id
}

// LinkProvider binds the plan to the provider's product and price.
func (p *Plan) LinkProvider(productID, priceID string) {
	p.providerProductID = productID
	p.providerPriceID = priceID
	p.updatedAt = time.Now().UTC()
}

func (p *Plan) SetFeatures(features []Feature) {
	p.features = features
}

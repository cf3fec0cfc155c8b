package dto

import (
	"time"

	"github.com/formcraft-io/formcraft/internal/domain/subscription"
)

// SubscriptionStatusDTO is the response of the subscription status endpoint.
type SubscriptionStatusDTO struct {
	ID       string `json:"id,omitempty"`
	Status   string `json:"status"`
	IsActive bool   `json:"isActive"`
	PlanID   uint   `json:"plan_id,omitempty"`
	// EndDate is the end of the current billing period.
	EndDate     *time.Time `json:"end_date,omitempty"`
	SuspendedAt *time.Time `json:"suspended_at,omitempty"`
}

type PlanLimitsDTO struct {
	MaxForms               int64 `json:"max_forms"`
	MaxSubmissionsPerMonth int64 `json:"max_submissions_per_month"`
	MaxStorageMb           int64 `json:"max_storage_mb"`
}

type FeatureDTO struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

type PlanDTO struct {
	ID       uint          `json:"id"`
	Slug     string        `json:"slug"`
	Name     string        `json:"name"`
	Price    string        `json:"price"`
	Currency string        `json:"currency"`
	Limits   PlanLimitsDTO `json:"limits"`
	Features []FeatureDTO  `json:"features"`
}

type SessionDTO struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url"`
}

// ToSubscriptionStatusDTO maps nil to the "none" status.
func ToSubscriptionStatusDTO(s *subscription.Subscription) *SubscriptionStatusDTO {
	if s == nil {
		return &SubscriptionStatusDTO{Status: "none"}
	}
	out := &SubscriptionStatusDTO{
		ID:          s.SID(),
		Status:      s.Status().String(),
		IsActive:    s.IsActive(),
		PlanID:      s.PlanID(),
		SuspendedAt: s.SuspendedAt(),
	}
	if end := s.EndDate(); !end.IsZero() {
		out.EndDate = &end
	}
	return out
}

func ToPlanDTO(p *subscription.Plan, features []subscription.Feature) *PlanDTO {
	limits := p.Limits()
	out := &PlanDTO{
		ID:       p.ID(),
		Slug:     p.Slug(),
		Name:     p.Name(),
		Price:    p.Price().StringFixed(2),
		Currency: p.Currency(),
		Limits: PlanLimitsDTO{
			MaxForms:               limits.MaxForms,
			MaxSubmissionsPerMonth: limits.MaxSubmissionsPerMonth,
			MaxStorageMb:           limits.MaxStorageMb,
		},
		Features: make([]FeatureDTO, 0, len(features)),
	}
	for _, f := range features {
		out.Features = append(out.Features, FeatureDTO{Key: f.Key, Name: f.Name, Value: f.Value})
	}
	return out
}

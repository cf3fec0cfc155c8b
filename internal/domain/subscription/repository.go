package subscription

import (
	"context"
	"time"
)

// Repository persists subscriptions. Lookups return (nil, nil) when the
// row does not exist.
type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	Update(ctx context.Context, s *Subscription) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	GetByProviderSubscriptionID(ctx context.Context, providerID string) (*Subscription, error)
	GetActiveByUserID(ctx context.Context, userID uint) (*Subscription, error)
	// GetLatestByUserID returns the most recently created subscription in any status.
	GetLatestByUserID(ctx context.Context, userID uint) (*Subscription, error)
	// ListActiveByUserID locks the returned rows when called inside a transaction.
	ListActiveByUserID(ctx context.Context, userID uint) ([]*Subscription, error)
	ListSuspendedBefore(ctx context.Context, cutoff time.Time) ([]*Subscription, error)
}

// PlanRepository reads and seeds plans.
type PlanRepository interface {
	Create(ctx context.Context, p *Plan) error
	Update(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id uint) (*Plan, error)
	GetBySlug(ctx context.Context, slug string) (*Plan, error)
	GetByProviderPriceID(ctx context.Context, priceID string) (*Plan, error)
	List(ctx context.Context) ([]*Plan, error)
	// GetFeatures runs a single join query and returns ordered feature rows.
	GetFeatures(ctx context.Context, planID uint) ([]Feature, error)
	ReplaceFeatures(ctx context.Context, planID uint, features []Feature) error
}

package usecases

import (
	"context"

	"github.com/formcraft-io/formcraft/internal/domain/subscription"
)

// LimitsCache caches the limits of a user's active plan.
type LimitsCache interface {
	// Get returns (nil, nil) on a cache miss.
	Get(ctx context.Context, userID uint) (*subscription.PlanLimits, error)
	Set(ctx context.Context, userID uint, limits subscription.PlanLimits) error
	Invalidate(ctx context.Context, userID uint) error
}

// StorageMeter reports storage used by a user's uploads, in megabytes.
type StorageMeter interface {
	UsedMb(ctx context.Context, userID uint) (float64, error)
}

// Metrics records quota outcomes.
type Metrics interface {
	QuotaExceeded(action string)
	QuotaNotification(threshold int, delivered bool)
}

type zeroStorageMeter struct{}

func (zeroStorageMeter) UsedMb(context.Context, uint) (float64, error) { return 0, nil }

type nopMetrics struct{}

func (nopMetrics) QuotaExceeded(string)        {}
func (nopMetrics) QuotaNotification(int, bool) {}

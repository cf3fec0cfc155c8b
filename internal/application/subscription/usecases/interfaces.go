package usecases

import "context"

// LimitsCacheInvalidator drops the cached plan limits of a user after a
// subscription change.
type LimitsCacheInvalidator interface {
	Invalidate(ctx context.Context, userID uint) error
}

// IDGenerator returns a new prefixed short id.
type IDGenerator func() (string, error)

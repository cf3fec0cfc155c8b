// Package ratelimit provides a sliding-window request limiter.
package ratelimit

import (
	"context"
	"time"
)

// Config sets per-window ceilings. A zero ceiling disables that window.
type Config struct {
	RequestsPerMinute int
	RequestsPerHour   int
	RequestsPerDay    int
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, config Config) (bool, error)
	GetRemaining(ctx context.Context, key string, window time.Duration, limit int) (int64, error)
	Reset(ctx context.Context, key string) error
}

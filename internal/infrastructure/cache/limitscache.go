package cache

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

const (
	limitsKeyPrefix = "quota:limits:"

	fieldMaxForms       = "max_forms"
	fieldMaxSubmissions = "max_submissions_per_month"
	fieldMaxStorageMb   = "max_storage_mb"
)

// RedisLimitsCache stores the limits of a user's active plan in a Redis
// hash. Entries expire after the base TTL plus up to a quarter of it in
// jitter so that a plan-wide change does not expire every key at once.
type RedisLimitsCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger logger.Interface
}

func NewRedisLimitsCache(client redis.UniversalClient, ttl time.Duration, logger logger.Interface) *RedisLimitsCache {
	return &RedisLimitsCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func limitsKey(userID uint) string {
	return limitsKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// Get returns (nil, nil) on a miss or on an entry with missing fields.
func (c *RedisLimitsCache) Get(ctx context.Context, userID uint) (*subscription.PlanLimits, error) {
	result, err := c.client.HGetAll(ctx, limitsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get limits from cache: %w", err)
	}
	if len(result) == 0 {
		return nil, nil
	}

	var limits subscription.PlanLimits
	for field, dst := range map[string]*int64{
		fieldMaxForms:       &limits.MaxForms,
		fieldMaxSubmissions: &limits.MaxSubmissionsPerMonth,
		fieldMaxStorageMb:   &limits.MaxStorageMb,
	} {
		raw, ok := result[field]
		if !ok {
			return nil, nil
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.logger.Warnw("corrupt limits cache entry", "user_id", userID, "field", field, "value", raw)
			return nil, nil
		}
		*dst = v
	}
	return &limits, nil
}

func (c *RedisLimitsCache) Set(ctx context.Context, userID uint, limits subscription.PlanLimits) error {
	key := limitsKey(userID)

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		fieldMaxForms:       limits.MaxForms,
		fieldMaxSubmissions: limits.MaxSubmissionsPerMonth,
		fieldMaxStorageMb:   limits.MaxStorageMb,
	})
	pipe.Expire(ctx, key, c.ttlWithJitter())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set limits in cache: %w", err)
	}

	c.logger.Debugw("plan limits cached", "user_id", userID, "max_forms", limits.MaxForms)
	return nil
}

func (c *RedisLimitsCache) Invalidate(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, limitsKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate limits cache: %w", err)
	}
	c.logger.Debugw("plan limits cache invalidated", "user_id", userID)
	return nil
}

func (c *RedisLimitsCache) ttlWithJitter() time.Duration {
	spread := int64(c.ttl / 4)
	if spread <= 0 {
		return c.ttl
	}
	return c.ttl + time.Duration(rand.Int64N(spread))
}

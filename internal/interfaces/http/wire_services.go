package http

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/formcraft-io/formcraft/internal/application/notification"
	"github.com/formcraft-io/formcraft/internal/domain/billing"
	"github.com/formcraft-io/formcraft/internal/infrastructure/auth"
	"github.com/formcraft-io/formcraft/internal/infrastructure/cache"
	"github.com/formcraft-io/formcraft/internal/infrastructure/config"
	"github.com/formcraft-io/formcraft/internal/infrastructure/email"
	"github.com/formcraft-io/formcraft/internal/infrastructure/metrics"
	"github.com/formcraft-io/formcraft/internal/infrastructure/payment"
	"github.com/formcraft-io/formcraft/internal/infrastructure/permission"
	"github.com/formcraft-io/formcraft/internal/infrastructure/ratelimit"
	"github.com/formcraft-io/formcraft/internal/infrastructure/scheduler"
	"github.com/formcraft-io/formcraft/internal/interfaces/http/middleware"
	sharedConfig "github.com/formcraft-io/formcraft/internal/shared/config"
	"github.com/formcraft-io/formcraft/internal/shared/db"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// services holds infrastructure adapters shared by several use cases.
type services struct {
	txManager   *db.TransactionManager
	hasher      *auth.BcryptPasswordHasher
	notifier    notification.Notifier
	provider    *payment.StripeProvider
	limitsCache *cache.RedisLimitsCache
	authorizer  *permission.FormAuthorizer
	policy      billing.Policy
}

// ============================================================
// Section 1: Infrastructure - Redis, metrics, casbin, providers
// ============================================================

func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log

	redisClient, err := initRedis(cfg, log)
	if err != nil {
		return err
	}
	c.redis = redisClient

	c.repos = newRepositories(c.db, log)

	c.registry = prometheus.NewRegistry()
	c.metrics = metrics.NewMetrics(c.registry)

	c.enforcer, err = permission.NewEnforcer(c.db, cfg.Permission.ModelPath, log)
	if err != nil {
		return fmt.Errorf("failed to initialize casbin enforcer: %w", err)
	}

	notifier, err := email.NewNotifier(cfg.Email, log)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}

	c.infra = &services{
		txManager:   db.NewTransactionManager(c.db),
		hasher:      auth.NewBcryptPasswordHasher(cfg.Auth.Password.BcryptCost),
		notifier:    notifier,
		provider:    payment.NewStripeProvider(cfg.Stripe, log),
		limitsCache: cache.NewRedisLimitsCache(c.redis, cfg.Quota.LimitsCacheDuration(), log),
		authorizer:  permission.NewFormAuthorizer(c.enforcer, log),
		policy:      dunningPolicy(cfg.Dunning),
	}

	c.jwtSvc = auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)

	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, log)
	c.permissionMiddleware = middleware.NewPermissionMiddleware(c.enforcer, log)
	c.submissionLimiter = middleware.NewSubmissionRateLimiter(
		ratelimit.NewRedisRateLimiter(c.redis),
		cfg.RateLimit.SubmissionsPerMinute,
		log,
	)

	c.schedulerManager = scheduler.NewSchedulerManager(log)
	return nil
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Infow("Redis connection established successfully", "address", cfg.Redis.GetAddr())

	return redisClient, nil
}

func dunningPolicy(cfg sharedConfig.DunningConfig) billing.Policy {
	policy := billing.DefaultPolicy()
	if len(cfg.RetryDays) > 0 {
		policy.RetryDays = cfg.RetryDays
	}
	if cfg.GraceDays > 0 {
		policy.GraceDays = cfg.GraceDays
	}
	return policy
}

// ============================================================
// Section 3: Scheduler jobs
// ============================================================

func (c *Container) initScheduler() error {
	c.dunningScheduler = scheduler.NewDunningScheduler(
		c.schedulerManager,
		c.ucs.downgradeSuspendedUC,
		c.cfg.Dunning.DowngradeSchedule,
		c.log,
	)
	if err := c.dunningScheduler.Register(); err != nil {
		return fmt.Errorf("failed to register dunning sweep: %w", err)
	}
	return nil
}

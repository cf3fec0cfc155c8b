package http

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/formcraft-io/formcraft/internal/infrastructure/auth"
	"github.com/formcraft-io/formcraft/internal/infrastructure/config"
	"github.com/formcraft-io/formcraft/internal/infrastructure/metrics"
	"github.com/formcraft-io/formcraft/internal/infrastructure/permission"
	"github.com/formcraft-io/formcraft/internal/infrastructure/scheduler"
	"github.com/formcraft-io/formcraft/internal/interfaces/http/middleware"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// Container holds infrastructure components, repositories, use cases,
// handlers and the scheduler. It wires everything together and releases
// what it opened in Shutdown.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	infra *services
	ucs   *allUseCases
	hdlrs *allHandlers

	// Middlewares
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	submissionLimiter    *middleware.SubmissionRateLimiter

	jwtSvc   *auth.JWTService
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	enforcer *permission.Enforcer

	schedulerManager *scheduler.SchedulerManager
	dunningScheduler *scheduler.DunningScheduler
}

// NewContainer builds the full object graph. Failures to reach Redis or to
// load casbin policies are fatal to startup and reported as errors.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	// Section 1: Infrastructure - Redis, metrics, casbin, providers
	if err := c.initInfrastructure(); err != nil {
		c.closeRedis()
		return nil, err
	}

	// Section 2: Use cases across forms, quota, subscription and billing
	c.initUseCases()

	// Section 3: Scheduler jobs
	if err := c.initScheduler(); err != nil {
		c.closeRedis()
		return nil, err
	}

	// Section 4: Handlers and middlewares
	c.initHandlers()

	return c, nil
}

// SyncPermissions installs the casbin policies derived from user roles.
func (c *Container) SyncPermissions(ctx context.Context) error {
	return permission.NewPermissionSync(c.db, c.enforcer, c.log).SyncToCasbin(ctx)
}

// Engine returns the gin engine. Call SetupRoutes first.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// Scheduler returns the dunning scheduler for the worker process.
func (c *Container) Scheduler() (*scheduler.SchedulerManager, *scheduler.DunningScheduler) {
	return c.schedulerManager, c.dunningScheduler
}

// Shutdown stops the scheduler and closes the Redis client.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error
	if c.schedulerManager != nil {
		if err := c.schedulerManager.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.closeRedis(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Container) closeRedis() error {
	if c.redis == nil {
		return nil
	}
	err := c.redis.Close()
	c.redis = nil
	return err
}

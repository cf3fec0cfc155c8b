package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/interfaces/http/middleware"
	"github.com/formcraft-io/formcraft/internal/interfaces/http/routes"
	"github.com/formcraft-io/formcraft/internal/shared/version"
)

// SetupRoutes configures all HTTP routes.
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.RequestID())
	c.engine.Use(middleware.CustomLogger(c.log))
	c.engine.Use(middleware.Recovery(c.log))
	c.engine.Use(middleware.Metrics(c.metrics))
	c.engine.Use(middleware.SecurityHeaders())
	c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))

	c.engine.GET("/health", c.health)
	c.engine.GET("/version", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, version.Get())
	})
	c.engine.GET("/metrics", gin.WrapH(c.metrics.Handler()))

	routes.SetupAuthRoutes(c.engine, &routes.AuthRouteConfig{
		AuthHandler: c.hdlrs.authHandler,
	})
	routes.SetupPlanRoutes(c.engine, &routes.PlanRouteConfig{
		PlanHandler: c.hdlrs.planHandler,
	})
	routes.SetupFormRoutes(c.engine, &routes.FormRouteConfig{
		FormHandler:        c.hdlrs.formHandler,
		FormVersionHandler: c.hdlrs.formVersionHandler,
		FormShareHandler:   c.hdlrs.formShareHandler,
		SubmissionHandler:  c.hdlrs.submissionHandler,
		AuthMiddleware:     c.authMiddleware,
	})
	routes.SetupPublicRoutes(c.engine, &routes.PublicRouteConfig{
		PublicFormHandler: c.hdlrs.publicFormHandler,
		AuthMiddleware:    c.authMiddleware,
		SubmissionLimiter: c.submissionLimiter,
	})
	routes.SetupBillingRoutes(c.engine, &routes.BillingRouteConfig{
		SubscriptionHandler: c.hdlrs.subscriptionHandler,
		QuotaHandler:        c.hdlrs.quotaHandler,
		PaymentHandler:      c.hdlrs.paymentHandler,
		AuthMiddleware:      c.authMiddleware,
	})
	routes.SetupAdminRoutes(c.engine, &routes.AdminRouteConfig{
		DunningHandler:       c.hdlrs.dunningHandler,
		AuthMiddleware:       c.authMiddleware,
		PermissionMiddleware: c.permissionMiddleware,
	})
}

// health reports database and Redis reachability.
func (c *Container) health(ctx *gin.Context) {
	status := http.StatusOK
	checks := gin.H{"database": "ok", "redis": "ok"}

	if sqlDB, err := c.db.DB(); err != nil || sqlDB.PingContext(ctx.Request.Context()) != nil {
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if c.redis == nil || c.redis.Ping(ctx.Request.Context()).Err() != nil {
		checks["redis"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	ctx.JSON(status, checks)
}

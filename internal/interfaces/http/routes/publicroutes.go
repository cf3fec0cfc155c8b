package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/interfaces/http/handlers"
	"github.com/formcraft-io/formcraft/internal/interfaces/http/middleware"
)

// PublicRouteConfig holds dependencies for respondent-facing routes.
type PublicRouteConfig struct {
	PublicFormHandler *handlers.PublicFormHandler
	AuthMiddleware    *middleware.AuthMiddleware
	SubmissionLimiter *middleware.SubmissionRateLimiter
}

// SetupPublicRoutes configures routes reachable without an account.
func SetupPublicRoutes(engine *gin.Engine, cfg *PublicRouteConfig) {
	public := engine.Group("/public/forms")
	public.Use(cfg.AuthMiddleware.OptionalAuth())
	{
		public.GET("/:id", cfg.PublicFormHandler.GetForm)
		public.POST("/:id/submissions", cfg.SubmissionLimiter.Limit(), cfg.PublicFormHandler.Submit)
	}
}

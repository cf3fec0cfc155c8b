package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/interfaces/http/handlers"
	"github.com/formcraft-io/formcraft/internal/interfaces/http/middleware"
)

// Casbin objects guarding operator routes.
const (
	ObjectDunning = "admin:dunning"
	ActionExecute = "execute"
)

// AdminRouteConfig holds dependencies for operator routes.
type AdminRouteConfig struct {
	DunningHandler       *handlers.DunningHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

// SetupAdminRoutes configures operator routes.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	admin := engine.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAuth())
	{
		admin.POST("/dunning/sweep",
			cfg.PermissionMiddleware.RequirePermission(ObjectDunning, ActionExecute),
			cfg.DunningHandler.RunSweep)
	}
}

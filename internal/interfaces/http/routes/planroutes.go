package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/interfaces/http/handlers"
)

// PlanRouteConfig holds dependencies for plan routes.
type PlanRouteConfig struct {
	PlanHandler *handlers.PlanHandler
}

// SetupPlanRoutes configures the public plan catalog.
func SetupPlanRoutes(engine *gin.Engine, cfg *PlanRouteConfig) {
	engine.GET("/plans", cfg.PlanHandler.ListPlans)
}

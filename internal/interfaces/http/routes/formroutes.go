package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/interfaces/http/handlers"
	"github.com/formcraft-io/formcraft/internal/interfaces/http/middleware"
)

// FormRouteConfig holds dependencies for form management routes.
type FormRouteConfig struct {
	FormHandler        *handlers.FormHandler
	FormVersionHandler *handlers.FormVersionHandler
	FormShareHandler   *handlers.FormShareHandler
	SubmissionHandler  *handlers.SubmissionHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

// SetupFormRoutes configures owner-facing form routes.
func SetupFormRoutes(engine *gin.Engine, cfg *FormRouteConfig) {
	forms := engine.Group("/forms")
	forms.Use(cfg.AuthMiddleware.RequireAuth())
	{
		forms.POST("", cfg.FormHandler.CreateForm)
		forms.GET("", cfg.FormHandler.ListForms)
		forms.GET("/:id", cfg.FormHandler.GetForm)
		forms.PATCH("/:id", cfg.FormHandler.UpdateForm)
		forms.DELETE("/:id", cfg.FormHandler.DeleteForm)

		forms.POST("/:id/publish", cfg.FormHandler.PublishForm)
		forms.POST("/:id/unpublish", cfg.FormHandler.UnpublishForm)
		forms.POST("/:id/archive", cfg.FormHandler.ArchiveForm)

		forms.GET("/:id/versions", cfg.FormVersionHandler.ListVersions)
		forms.POST("/:id/versions", cfg.FormVersionHandler.CreateVersion)
		forms.GET("/:id/versions/:version", cfg.FormVersionHandler.GetVersion)
		forms.DELETE("/:id/versions/:version", cfg.FormVersionHandler.DeleteVersion)
		forms.POST("/:id/versions/:version/restore", cfg.FormVersionHandler.RestoreVersion)

		forms.POST("/:id/shares", cfg.FormShareHandler.Share)
		forms.DELETE("/:id/shares/:user_id", cfg.FormShareHandler.Unshare)

		// export must be registered before any future /submissions/:sid route
		forms.GET("/:id/submissions/export", cfg.SubmissionHandler.ExportSubmissions)
		forms.GET("/:id/submissions", cfg.SubmissionHandler.ListSubmissions)
	}
}

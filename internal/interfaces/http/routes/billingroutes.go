package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/interfaces/http/handlers"
	"github.com/formcraft-io/formcraft/internal/interfaces/http/middleware"
)

// BillingRouteConfig holds dependencies for subscription, quota and
// payment provider routes.
type BillingRouteConfig struct {
	SubscriptionHandler *handlers.SubscriptionHandler
	QuotaHandler        *handlers.QuotaHandler
	PaymentHandler      *handlers.PaymentHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

// SetupBillingRoutes configures billing routes.
func SetupBillingRoutes(engine *gin.Engine, cfg *BillingRouteConfig) {
	// Provider callbacks authenticate through their signature.
	engine.POST("/webhooks/stripe", cfg.PaymentHandler.StripeWebhook)

	protected := engine.Group("")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		protected.GET("/subscription", cfg.SubscriptionHandler.GetStatus)
		protected.GET("/quota", cfg.QuotaHandler.GetQuota)

		billing := protected.Group("/billing")
		{
			billing.POST("/checkout", cfg.SubscriptionHandler.CreateCheckout)
			billing.POST("/portal", cfg.SubscriptionHandler.CreatePortal)
			billing.POST("/invoices/:invoice_id/retry", cfg.SubscriptionHandler.RetryInvoice)
		}
	}
}

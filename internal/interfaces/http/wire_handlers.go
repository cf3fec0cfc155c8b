package http

import (
	"github.com/formcraft-io/formcraft/internal/interfaces/http/handlers"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	authHandler         *handlers.AuthHandler
	planHandler         *handlers.PlanHandler
	formHandler         *handlers.FormHandler
	formVersionHandler  *handlers.FormVersionHandler
	formShareHandler    *handlers.FormShareHandler
	submissionHandler   *handlers.SubmissionHandler
	publicFormHandler   *handlers.PublicFormHandler
	quotaHandler        *handlers.QuotaHandler
	subscriptionHandler *handlers.SubscriptionHandler
	paymentHandler      *handlers.PaymentHandler
	dunningHandler      *handlers.DunningHandler
}

// ============================================================
// Section 4: Handlers
// ============================================================

func (c *Container) initHandlers() {
	log := c.log
	ucs := c.ucs

	c.hdlrs = &allHandlers{
		authHandler: handlers.NewAuthHandler(ucs.registerUC, ucs.loginUC, log),
		planHandler: handlers.NewPlanHandler(ucs.listPlansUC, log),
		formHandler: handlers.NewFormHandler(
			ucs.createFormUC, ucs.updateFormUC, ucs.getFormUC, ucs.listFormsUC,
			ucs.deleteFormUC, ucs.changeFormStatusUC, log,
		),
		formVersionHandler:  handlers.NewFormVersionHandler(ucs.versionManager, log),
		formShareHandler:    handlers.NewFormShareHandler(ucs.shareFormUC, log),
		submissionHandler:   handlers.NewSubmissionHandler(ucs.listSubmissionsUC, ucs.exportUC, log),
		publicFormHandler:   handlers.NewPublicFormHandler(ucs.getFormUC, ucs.submitFormUC, log),
		quotaHandler:        handlers.NewQuotaHandler(ucs.calculator, log),
		subscriptionHandler: handlers.NewSubscriptionHandler(ucs.subscriptionStatusUC, ucs.checkoutUC, ucs.dunning, log),
		paymentHandler:      handlers.NewPaymentHandler(ucs.handleWebhookUC, log),
		dunningHandler:      handlers.NewDunningHandler(c.dunningScheduler, log),
	}
}

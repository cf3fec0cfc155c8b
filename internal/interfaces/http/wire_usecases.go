package http

import (
	billingUsecases "github.com/formcraft-io/formcraft/internal/application/billing/usecases"
	formUsecases "github.com/formcraft-io/formcraft/internal/application/form/usecases"
	quotaUsecases "github.com/formcraft-io/formcraft/internal/application/quota/usecases"
	subscriptionUsecases "github.com/formcraft-io/formcraft/internal/application/subscription/usecases"
	userUsecases "github.com/formcraft-io/formcraft/internal/application/user/usecases"
	"github.com/formcraft-io/formcraft/internal/shared/id"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	// User / Auth
	registerUC *userUsecases.RegisterUseCase
	loginUC    *userUsecases.LoginUseCase

	// Quota
	notificationGate *quotaUsecases.NotificationGate
	calculator       *quotaUsecases.Calculator

	// Forms
	versionManager     *formUsecases.VersionManager
	createFormUC       *formUsecases.CreateFormUseCase
	updateFormUC       *formUsecases.UpdateFormUseCase
	getFormUC          *formUsecases.GetFormUseCase
	listFormsUC        *formUsecases.ListFormsUseCase
	deleteFormUC       *formUsecases.DeleteFormUseCase
	changeFormStatusUC *formUsecases.ChangeFormStatusUseCase
	shareFormUC        *formUsecases.ShareFormUseCase
	listSubmissionsUC  *formUsecases.ListSubmissionsUseCase
	exportUC           *formUsecases.ExportSubmissionsUseCase
	submitFormUC       *formUsecases.SubmitFormUseCase

	// Subscription
	lifecycle            *subscriptionUsecases.LifecycleManager
	checkoutUC           *subscriptionUsecases.CheckoutUseCase
	subscriptionStatusUC *subscriptionUsecases.GetSubscriptionStatusUseCase
	listPlansUC          *subscriptionUsecases.ListPlansUseCase

	// Billing
	dunning              *billingUsecases.DunningService
	downgradeSuspendedUC *billingUsecases.DowngradeSuspendedUseCase
	handleWebhookUC      *billingUsecases.HandleWebhookUseCase
}

// ============================================================
// Section 2: Use cases
// ============================================================

func (c *Container) initUseCases() {
	cfg := c.cfg
	log := c.log
	repos := c.repos
	infra := c.infra
	ucs := &allUseCases{}

	// Subscription lifecycle comes first: registration and billing drive it.
	ucs.lifecycle = subscriptionUsecases.NewLifecycleManager(
		repos.subscriptionRepo, repos.planRepo, repos.userRepo,
		infra.txManager, id.NewSubscriptionID, log,
	)
	ucs.lifecycle.SetLimitsCache(infra.limitsCache)
	ucs.checkoutUC = subscriptionUsecases.NewCheckoutUseCase(
		repos.userRepo, repos.planRepo, infra.provider,
		subscriptionUsecases.CheckoutURLs{
			SuccessURL:      cfg.Stripe.SuccessURL,
			CancelURL:       cfg.Stripe.CancelURL,
			PortalReturnURL: cfg.Stripe.PortalReturnURL,
		},
		log,
	)
	ucs.subscriptionStatusUC = subscriptionUsecases.NewGetSubscriptionStatusUseCase(repos.subscriptionRepo, log)
	ucs.listPlansUC = subscriptionUsecases.NewListPlansUseCase(repos.planRepo, log)

	ucs.registerUC = userUsecases.NewRegisterUseCase(
		repos.userRepo, repos.planRepo, ucs.lifecycle, infra.hasher, cfg.Dunning.FreePlanSlug, log,
	)
	ucs.loginUC = userUsecases.NewLoginUseCase(repos.userRepo, infra.hasher, c.jwtSvc, log)

	ucs.notificationGate = quotaUsecases.NewNotificationGate(repos.quotaStatusRepo, infra.notifier, log)
	ucs.notificationGate.SetMetrics(c.metrics)
	ucs.calculator = quotaUsecases.NewCalculator(
		repos.subscriptionRepo, repos.planRepo, repos.formRepo, repos.submissionRepo,
		repos.userRepo, ucs.notificationGate, log,
	)
	ucs.calculator.SetLimitsCache(infra.limitsCache)
	ucs.calculator.SetMetrics(c.metrics)

	authz := infra.authorizer
	ucs.versionManager = formUsecases.NewVersionManager(
		repos.formRepo, repos.formVersionRepo, authz, infra.txManager, cfg.Quota.VersionCap, log,
	)
	ucs.createFormUC = formUsecases.NewCreateFormUseCase(
		repos.formRepo, ucs.versionManager, ucs.calculator, infra.txManager, id.NewFormID, log,
	)
	ucs.updateFormUC = formUsecases.NewUpdateFormUseCase(
		repos.formRepo, ucs.versionManager, authz, infra.txManager, log,
	)
	ucs.getFormUC = formUsecases.NewGetFormUseCase(repos.formRepo, repos.formVersionRepo, authz, log)
	ucs.listFormsUC = formUsecases.NewListFormsUseCase(repos.formRepo, log)
	ucs.deleteFormUC = formUsecases.NewDeleteFormUseCase(repos.formRepo, authz, log)
	ucs.deleteFormUC.SetSharingCleaner(authz)
	ucs.changeFormStatusUC = formUsecases.NewChangeFormStatusUseCase(repos.formRepo, authz, log)
	ucs.shareFormUC = formUsecases.NewShareFormUseCase(repos.formRepo, repos.userRepo, authz, log)
	ucs.listSubmissionsUC = formUsecases.NewListSubmissionsUseCase(repos.formRepo, repos.submissionRepo, authz, log)
	ucs.exportUC = formUsecases.NewExportSubmissionsUseCase(
		repos.formRepo, repos.formVersionRepo, repos.submissionRepo, authz, log,
	)
	ucs.submitFormUC = formUsecases.NewSubmitFormUseCase(
		repos.formRepo, repos.formVersionRepo, repos.submissionRepo, ucs.calculator, id.NewSubmissionID, log,
	)
	ucs.submitFormUC.SetOwnerNotifier(repos.userRepo, infra.notifier)

	ucs.dunning = billingUsecases.NewDunningService(
		repos.subscriptionRepo, repos.paymentFailureRepo, repos.userRepo,
		infra.provider, infra.notifier, infra.txManager, infra.policy, log,
	)
	ucs.dunning.SetLimitsCache(infra.limitsCache)
	ucs.dunning.SetMetrics(c.metrics)
	ucs.downgradeSuspendedUC = billingUsecases.NewDowngradeSuspendedUseCase(
		repos.subscriptionRepo, repos.planRepo, repos.userRepo, ucs.lifecycle,
		infra.provider, infra.notifier, infra.policy, cfg.Dunning.FreePlanSlug, log,
	)
	ucs.handleWebhookUC = billingUsecases.NewHandleWebhookUseCase(
		infra.provider, repos.webhookEventRepo, ucs.lifecycle, ucs.dunning, log,
	)
	ucs.handleWebhookUC.SetMetrics(c.metrics)

	c.ucs = ucs
}

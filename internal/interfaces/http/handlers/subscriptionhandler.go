package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/application/subscription/usecases"
	"github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
	"github.com/formcraft-io/formcraft/internal/shared/utils"
)

// SubscriptionHandler handles the billing surface of the current user.
type SubscriptionHandler struct {
	statusUC   getSubscriptionStatusUseCase
	checkoutUC checkoutUseCase
	retrier    paymentRetrier
	logger     logger.Interface
}

func NewSubscriptionHandler(
	statusUC getSubscriptionStatusUseCase,
	checkoutUC checkoutUseCase,
	retrier paymentRetrier,
	logger logger.Interface,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		statusUC:   statusUC,
		checkoutUC: checkoutUC,
		retrier:    retrier,
		logger:     logger,
	}
}

type CreateCheckoutRequest struct {
	PlanSlug string `json:"plan_slug" binding:"required,max=64"`
}

type InvoiceResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	AttemptCount int64  `json:"attempt_count"`
	AmountDue    int64  `json:"amount_due"`
	Currency     string `json:"currency"`
}

// GetStatus handles GET /subscription
func (h *SubscriptionHandler) GetStatus(c *gin.Context) {
	userID, err := getUserIDFromContext(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	status, err := h.statusUC.Execute(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", status)
}

// CreateCheckout handles POST /billing/checkout
func (h *SubscriptionHandler) CreateCheckout(c *gin.Context) {
	userID, err := getUserIDFromContext(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for checkout", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	session, err := h.checkoutUC.Execute(c.Request.Context(), usecases.CreateCheckoutCommand{
		UserID:   userID,
		PlanSlug: strings.TrimSpace(req.PlanSlug),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, session, "Checkout session created")
}

// CreatePortal handles POST /billing/portal
func (h *SubscriptionHandler) CreatePortal(c *gin.Context) {
	userID, err := getUserIDFromContext(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	session, err := h.checkoutUC.CreatePortalSession(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, session, "Portal session created")
}

// RetryInvoice handles POST /billing/invoices/:invoice_id/retry
func (h *SubscriptionHandler) RetryInvoice(c *gin.Context) {
	userID, err := getUserIDFromContext(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	invoiceID := c.Param("invoice_id")
	if !strings.HasPrefix(invoiceID, "in_") {
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid invoice ID format, expected in_xxxxx"))
		return
	}

	inv, err := h.retrier.RetryPayment(c.Request.Context(), userID, invoiceID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payment retried", InvoiceResponse{
		ID:           inv.ID,
		Status:       inv.Status,
		AttemptCount: inv.AttemptCount,
		AmountDue:    inv.AmountDue,
		Currency:     inv.Currency,
	})
}

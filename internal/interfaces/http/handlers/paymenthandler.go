package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	billingUsecases "github.com/formcraft-io/formcraft/internal/application/billing/usecases"
	"github.com/formcraft-io/formcraft/internal/shared/constants"
	"github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
	"github.com/formcraft-io/formcraft/internal/shared/utils"
)

type webhookUseCase interface {
	Execute(ctx context.Context, payload []byte, signature string) (string, error)
}

// PaymentHandler receives payment provider webhooks.
type PaymentHandler struct {
	webhookUC webhookUseCase
	logger    logger.Interface
}

func NewPaymentHandler(webhookUC webhookUseCase, logger logger.Interface) *PaymentHandler {
	return &PaymentHandler{
		webhookUC: webhookUC,
		logger:    logger,
	}
}

// StripeWebhook handles POST /webhooks/stripe. Processed, ignored and
// duplicate deliveries are acknowledged; a failed dispatch answers 500 so
// that the provider redelivers.
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, constants.WebhookMaxBodyBytes+1))
	if err != nil {
		h.logger.Warnw("failed to read webhook body", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "failed to read request body")
		return
	}
	if int64(len(payload)) > constants.WebhookMaxBodyBytes {
		h.logger.Warnw("webhook body too large", "ip", c.ClientIP())
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	signature := c.GetHeader(constants.HeaderStripeSignature)
	result, err := h.webhookUC.Execute(c.Request.Context(), payload, signature)
	if err != nil {
		if errors.IsAppError(err) {
			utils.ErrorResponseWithError(c, err)
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "webhook processing failed")
		return
	}

	switch result {
	case billingUsecases.WebhookResultProcessed, billingUsecases.WebhookResultIgnored, billingUsecases.WebhookResultDuplicate:
		c.JSON(http.StatusOK, gin.H{"received": true, "result": result})
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, "webhook processing failed")
	}
}

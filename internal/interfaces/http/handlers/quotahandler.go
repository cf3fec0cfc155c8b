package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	quotadto "github.com/formcraft-io/formcraft/internal/application/quota/dto"
	"github.com/formcraft-io/formcraft/internal/domain/quota"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
	"github.com/formcraft-io/formcraft/internal/shared/utils"
)

type quotaCalculator interface {
	CalculateCurrentQuotas(ctx context.Context, userID uint) (*quota.Snapshot, error)
}

// QuotaHandler reports the plan limits and live usage of the caller.
type QuotaHandler struct {
	calculator quotaCalculator
	logger     logger.Interface
}

func NewQuotaHandler(calculator quotaCalculator, logger logger.Interface) *QuotaHandler {
	return &QuotaHandler{
		calculator: calculator,
		logger:     logger,
	}
}

// GetQuota handles GET /quota
func (h *QuotaHandler) GetQuota(c *gin.Context) {
	userID, err := getUserIDFromContext(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	snapshot, err := h.calculator.CalculateCurrentQuotas(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", quotadto.ToQuotaDTO(snapshot))
}

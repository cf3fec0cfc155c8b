package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/shared/logger"
	"github.com/formcraft-io/formcraft/internal/shared/utils"
)

type dunningSweeper interface {
	RunOnce(ctx context.Context)
}

// DunningHandler lets operators trigger the downgrade sweep outside its schedule.
type DunningHandler struct {
	sweeper dunningSweeper
	logger  logger.Interface
}

func NewDunningHandler(sweeper dunningSweeper, logger logger.Interface) *DunningHandler {
	return &DunningHandler{
		sweeper: sweeper,
		logger:  logger,
	}
}

// RunSweep handles POST /admin/dunning/sweep. The sweep runs synchronously
// and reports through logs and metrics.
func (h *DunningHandler) RunSweep(c *gin.Context) {
	userID, err := getUserIDFromContext(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("manual dunning sweep requested", "user_id", userID)
	h.sweeper.RunOnce(c.Request.Context())

	utils.SuccessResponse(c, http.StatusOK, "dunning sweep completed", nil)
}

package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/application/form/usecases"
	"github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
	"github.com/formcraft-io/formcraft/internal/shared/utils"
)

// FormShareHandler manages collaborator access to a form.
type FormShareHandler struct {
	shareUC shareFormUseCase
	logger  logger.Interface
}

func NewFormShareHandler(shareUC shareFormUseCase, logger logger.Interface) *FormShareHandler {
	return &FormShareHandler{
		shareUC: shareUC,
		logger:  logger,
	}
}

type ShareFormRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Access string `json:"access" binding:"required,oneof=read write"`
}

// Share handles POST /forms/:id/shares
func (h *FormShareHandler) Share(c *gin.Context) {
	userID, err := getUserIDFromContext(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	formSID, err := parseFormSID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ShareFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid share request", "error", err, "form_id", formSID)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	err = h.shareUC.Execute(c.Request.Context(), usecases.ShareFormCommand{
		OwnerID:  userID,
		FormSID:  formSID,
		TargetID: req.UserID,
		Access:   req.Access,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// Unshare handles DELETE /forms/:id/shares/:user_id
func (h *FormShareHandler) Unshare(c *gin.Context) {
	userID, err := getUserIDFromContext(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	formSID, err := parseFormSID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	raw := c.Param("user_id")
	targetID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || targetID == 0 {
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid user id", raw))
		return
	}

	if err := h.shareUC.Unshare(c.Request.Context(), userID, formSID, uint(targetID)); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/application/form/usecases"
	"github.com/formcraft-io/formcraft/internal/shared/constants"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
	"github.com/formcraft-io/formcraft/internal/shared/utils"
)

// PublicFormHandler serves published forms to anonymous respondents.
type PublicFormHandler struct {
	getUC    getFormUseCase
	submitUC submitFormUseCase
	logger   logger.Interface
}

func NewPublicFormHandler(getUC getFormUseCase, submitUC submitFormUseCase, logger logger.Interface) *PublicFormHandler {
	return &PublicFormHandler{
		getUC:    getUC,
		submitUC: submitUC,
		logger:   logger,
	}
}

type SubmitFormRequest struct {
	Data map[string]any `json:"data" binding:"required"`
}

type SubmitFormResponse struct {
	SubmissionID   string `json:"submission_id"`
	SuccessMessage string `json:"success_message,omitempty"`
	RedirectURL    string `json:"redirect_url,omitempty"`
}

// GetForm handles GET /public/forms/:id
func (h *PublicFormHandler) GetForm(c *gin.Context) {
	formSID, err := parseFormSID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	detail, err := h.getUC.ExecutePublic(c.Request.Context(), formSID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", detail)
}

// Submit handles POST /public/forms/:id/submissions
func (h *PublicFormHandler) Submit(c *gin.Context) {
	formSID, err := parseFormSID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req SubmitFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid submission body", "error", err, "form_id", formSID, "ip", c.ClientIP())
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	cmd := usecases.SubmitFormCommand{
		FormSID:   formSID,
		Data:      req.Data,
		IPAddress: c.ClientIP(),
	}
	if v, ok := c.Get(constants.ContextKeyUserID); ok {
		if uid, ok := v.(uint); ok {
			cmd.SubmitterID = &uid
		}
	}

	result, err := h.submitUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, SubmitFormResponse{
		SubmissionID:   result.Submission.SID(),
		SuccessMessage: result.SuccessMessage,
		RedirectURL:    result.RedirectURL,
	}, "Submission received")
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/application/form/dto"
	"github.com/formcraft-io/formcraft/internal/application/form/usecases"
	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
	"github.com/formcraft-io/formcraft/internal/shared/utils"
)

// FormHandler serves the owner-facing form endpoints.
type FormHandler struct {
	createUC       createFormUseCase
	updateUC       updateFormUseCase
	getUC          getFormUseCase
	listUC         listFormsUseCase
	deleteUC       deleteFormUseCase
	changeStatusUC changeFormStatusUseCase
	logger         logger.Interface
}

func NewFormHandler(
	createUC createFormUseCase,
	updateUC updateFormUseCase,
	getUC getFormUseCase,
	listUC listFormsUseCase,
	deleteUC deleteFormUseCase,
	changeStatusUC changeFormStatusUseCase,
	logger logger.Interface,
) *FormHandler {
	return &FormHandler{
		createUC:       createUC,
		updateUC:       updateUC,
		getUC:          getUC,
		listUC:         listUC,
		deleteUC:       deleteUC,
		changeStatusUC: changeStatusUC,
		logger:         logger,
	}
}

type CreateFormRequest struct {
	Title       string         `json:"title" binding:"required,max=255"`
	Description string         `json:"description" binding:"max=2000"`
	Schema      map[string]any `json:"schema" binding:"required"`
}

// UpdateFormRequest changes metadata and, when schema is present, appends a version.
type UpdateFormRequest struct {
	Title       *string        `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string        `json:"description" binding:"omitempty,max=2000"`
	Schema      map[string]any `json:"schema"`
}

// CreateForm handles POST /forms
func (h *FormHandler) CreateForm(c *gin.Context) {
	userID, err := getUserIDFromContext(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create form", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	result, err := h.createUC.Execute(c.Request.Context(), usecases.CreateFormCommand{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Schema:      form.Schema(req.Schema),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, formDetail(result.Form, result.Version), "Form created successfully")
}

// ListForms handles GET /forms
func (h *FormHandler) ListForms(c *gin.Context) {
	userID, err := getUserIDFromContext(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	p := utils.ParsePagination(c)
	result, err := h.listUC.Execute(c.Request.Context(), usecases.ListFormsQuery{
		OwnerID:  userID,
		Status:   c.Query("status"),
		Page:     p.Page,
		PageSize: p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Forms, result.Total, p.Page, p.PageSize)
}

// GetForm handles GET /forms/:id
func (h *FormHandler) GetForm(c *gin.Context) {
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

	detail, err := h.getUC.Execute(c.Request.Context(), userID, formSID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", detail)
}

// UpdateForm handles PATCH /forms/:id
func (h *FormHandler) UpdateForm(c *gin.Context) {
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

	var req UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update form", "error", err, "form_id", formSID)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	cmd := usecases.UpdateFormCommand{
		UserID:      userID,
		FormSID:     formSID,
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Schema != nil {
		cmd.Schema = form.Schema(req.Schema)
	}

	result, err := h.updateUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Form updated successfully", formDetail(result.Form, result.Version))
}

// DeleteForm handles DELETE /forms/:id
func (h *FormHandler) DeleteForm(c *gin.Context) {
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

	if err := h.deleteUC.Execute(c.Request.Context(), userID, formSID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// PublishForm handles POST /forms/:id/publish
func (h *FormHandler) PublishForm(c *gin.Context) {
	h.changeStatus(c, usecases.ActionPublish)
}

// UnpublishForm handles POST /forms/:id/unpublish
func (h *FormHandler) UnpublishForm(c *gin.Context) {
	h.changeStatus(c, usecases.ActionUnpublish)
}

// ArchiveForm handles POST /forms/:id/archive
func (h *FormHandler) ArchiveForm(c *gin.Context) {
	h.changeStatus(c, usecases.ActionArchive)
}

func (h *FormHandler) changeStatus(c *gin.Context, action usecases.StatusAction) {
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

	f, err := h.changeStatusUC.Execute(c.Request.Context(), usecases.ChangeFormStatusCommand{
		UserID:  userID,
		FormSID: formSID,
		Action:  action,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Form status updated", dto.ToFormDTO(f))
}

func formDetail(f *form.Form, v *form.Version) *dto.FormDetailDTO {
	detail := &dto.FormDetailDTO{}
	if f == nil {
		return detail
	}
	detail.FormDTO = *dto.ToFormDTO(f)
	detail.Version = dto.ToVersionDTO(f.SID(), v)
	return detail
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/application/form/dto"
	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
	"github.com/formcraft-io/formcraft/internal/shared/utils"
)

// FormVersionHandler exposes the version history of a form.
type FormVersionHandler struct {
	versions formVersionManager
	logger   logger.Interface
}

func NewFormVersionHandler(versions formVersionManager, logger logger.Interface) *FormVersionHandler {
	return &FormVersionHandler{
		versions: versions,
		logger:   logger,
	}
}

type CreateVersionRequest struct {
	Schema map[string]any `json:"schema" binding:"required"`
}

// ListVersions handles GET /forms/:id/versions
func (h *FormVersionHandler) ListVersions(c *gin.Context) {
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

	versions, err := h.versions.ListVersions(c.Request.Context(), userID, formSID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", dto.ToVersionSummaryList(versions))
}

// GetVersion handles GET /forms/:id/versions/:version
func (h *FormVersionHandler) GetVersion(c *gin.Context) {
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
	n, err := parseVersionNumber(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	v, err := h.versions.GetVersion(c.Request.Context(), userID, formSID, n)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", dto.ToVersionDTO(formSID, v))
}

// CreateVersion handles POST /forms/:id/versions
func (h *FormVersionHandler) CreateVersion(c *gin.Context) {
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

	var req CreateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create version", "error", err, "form_id", formSID)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	v, err := h.versions.CreateVersion(c.Request.Context(), userID, formSID, form.Schema(req.Schema))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, dto.ToVersionDTO(formSID, v), "Version created successfully")
}

// RestoreVersion handles POST /forms/:id/versions/:version/restore. The
// restored schema is copied into a new latest version.
func (h *FormVersionHandler) RestoreVersion(c *gin.Context) {
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
	n, err := parseVersionNumber(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	v, err := h.versions.RestoreVersion(c.Request.Context(), userID, formSID, n)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, dto.ToVersionDTO(formSID, v), "Version restored successfully")
}

// DeleteVersion handles DELETE /forms/:id/versions/:version
func (h *FormVersionHandler) DeleteVersion(c *gin.Context) {
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
	n, err := parseVersionNumber(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.versions.DeleteVersion(c.Request.Context(), userID, formSID, n); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

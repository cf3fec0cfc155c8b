package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/application/form/usecases"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
	"github.com/formcraft-io/formcraft/internal/shared/utils"
)

type SubmissionHandler struct {
	listUC   listSubmissionsUseCase
	exportUC exportSubmissionsUseCase
	logger   logger.Interface
}

func NewSubmissionHandler(listUC listSubmissionsUseCase, exportUC exportSubmissionsUseCase, logger logger.Interface) *SubmissionHandler {
	return &SubmissionHandler{
		listUC:   listUC,
		exportUC: exportUC,
		logger:   logger,
	}
}

// ListSubmissions handles GET /forms/:id/submissions
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
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

	p := utils.ParsePagination(c)
	result, err := h.listUC.Execute(c.Request.Context(), usecases.ListSubmissionsQuery{
		UserID:   userID,
		FormSID:  formSID,
		Page:     p.Page,
		PageSize: p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Submissions, result.Total, p.Page, p.PageSize)
}

// ExportSubmissions handles GET /forms/:id/submissions/export. The CSV is
// rendered fully before any byte is sent so that failures still produce a
// JSON error.
func (h *SubmissionHandler) ExportSubmissions(c *gin.Context) {
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

	var buf bytes.Buffer
	if err := h.exportUC.Execute(c.Request.Context(), userID, formSID, &buf); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-submissions.csv"`, formSID))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

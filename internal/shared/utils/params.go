package utils

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/id"
)

// ParseSIDParam reads a prefixed public ID such as "frm_ab12cd34" from the
// route parameter and rejects IDs of another entity type.
func ParseSIDParam(c *gin.Context, paramName, prefix, entityName string) (string, error) {
	sid := strings.TrimSpace(c.Param(paramName))
	if sid == "" {
		return "", errors.NewValidationError(entityName + " id is required")
	}
	if err := id.ValidatePrefix(sid, prefix); err != nil {
		return "", errors.NewValidationError(fmt.Sprintf("invalid %s id, expected %s_<id>", entityName, prefix))
	}
	return sid, nil
}

package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/shared/constants"
	"github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/id"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
	"github.com/formcraft-io/formcraft/internal/shared/utils"
)

// getUserIDFromContext retrieves user_id set by the auth middleware.
func getUserIDFromContext(c *gin.Context, log logger.Interface) (uint, error) {
	userIDInterface, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		log.Warnw("user_id not found in context", "ip", c.ClientIP())
		return 0, errors.NewUnauthorizedError("user not authenticated")
	}

	userID, ok := userIDInterface.(uint)
	if !ok {
		log.Warnw("invalid user_id type in context", "user_id", userIDInterface, "ip", c.ClientIP())
		return 0, errors.NewInternalError("invalid user ID type")
	}

	return userID, nil
}

func parseFormSID(c *gin.Context) (string, error) {
	return utils.ParseSIDParam(c, "id", id.PrefixForm, "form")
}

func parseVersionNumber(c *gin.Context) (int, error) {
	raw := c.Param("version")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.NewValidationError("invalid version number", raw)
	}
	return n, nil
}

// bindError turns a request binding failure into a validation error.
func bindError(err error) error {
	return errors.NewValidationError("invalid request body", err.Error())
}

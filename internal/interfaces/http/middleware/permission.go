package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/infrastructure/permission"
	"github.com/formcraft-io/formcraft/internal/shared/constants"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
	"github.com/formcraft-io/formcraft/internal/shared/utils"
)

type policyEnforcer interface {
	Enforce(subject, object, action string) (bool, error)
}

// PermissionMiddleware guards operator routes with casbin policies.
type PermissionMiddleware struct {
	enforcer policyEnforcer
	logger   logger.Interface
}

func NewPermissionMiddleware(enforcer policyEnforcer, logger logger.Interface) *PermissionMiddleware {
	return &PermissionMiddleware{
		enforcer: enforcer,
		logger:   logger,
	}
}

// RequirePermission must run after RequireAuth.
func (m *PermissionMiddleware) RequirePermission(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, exists := c.Get(constants.ContextKeyUserID)
		userID, ok := raw.(uint)
		if !exists || !ok {
			utils.ErrorResponseWithError(c, apperrors.NewUnauthorizedError("user not authenticated"))
			c.Abort()
			return
		}

		allowed, err := m.enforcer.Enforce(permission.UserSubject(userID), object, action)
		if err != nil {
			m.logger.Errorw("permission check failed", "error", err, "user_id", userID, "object", object, "action", action)
			utils.ErrorResponseWithError(c, apperrors.NewInternalError("permission check failed"))
			c.Abort()
			return
		}

		if !allowed {
			m.logger.Warnw("permission denied", "user_id", userID, "object", object, "action", action)
			utils.ErrorResponseWithError(c, apperrors.NewForbiddenError("insufficient permissions"))
			c.Abort()
			return
		}

		c.Next()
	}
}

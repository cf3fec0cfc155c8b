package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/infrastructure/auth"
	"github.com/formcraft-io/formcraft/internal/shared/constants"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
	"github.com/formcraft-io/formcraft/internal/shared/utils"
)

type AuthMiddleware struct {
	jwtService *auth.JWTService
	logger     logger.Interface
}

func NewAuthMiddleware(jwtService *auth.JWTService, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.ErrorResponseWithError(c, apperrors.NewUnauthorizedError("missing authorization token"))
			c.Abort()
			return
		}

		claims, err := m.jwtService.Verify(token)
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err, "ip", c.ClientIP())
			if errors.Is(err, auth.ErrTokenExpired) {
				utils.ErrorResponseWithError(c, apperrors.NewTokenExpiredError())
			} else {
				utils.ErrorResponseWithError(c, apperrors.NewTokenInvalidError())
			}
			c.Abort()
			return
		}

		if !setIdentity(c, claims) {
			utils.ErrorResponseWithError(c, apperrors.NewTokenInvalidError())
			c.Abort()
			return
		}

		c.Next()
	}
}

// OptionalAuth sets the identity when a valid token is present and lets
// anonymous requests through untouched.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := m.jwtService.Verify(token); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(constants.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setIdentity(c *gin.Context, claims *auth.Claims) bool {
	userID, err := claims.UserID()
	if err != nil {
		return false
	}
	c.Set(constants.ContextKeyUserID, userID)
	c.Set(constants.ContextKeyUserRole, string(claims.Role))
	return true
}

package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/formcraft-io/formcraft/internal/infrastructure/ratelimit"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
	"github.com/formcraft-io/formcraft/internal/shared/utils"
)

// SubmissionRateLimiter throttles public submissions per client IP and form.
type SubmissionRateLimiter struct {
	limiter ratelimit.RateLimiter
	config  ratelimit.Config
	logger  logger.Interface
}

func NewSubmissionRateLimiter(limiter ratelimit.RateLimiter, perMinute int, logger logger.Interface) *SubmissionRateLimiter {
	return &SubmissionRateLimiter{
		limiter: limiter,
		config:  ratelimit.Config{RequestsPerMinute: perMinute},
		logger:  logger,
	}
}

// Limit lets requests through when the limiter backend is unavailable.
func (rl *SubmissionRateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.config.RequestsPerMinute <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("submit:%s:%s", c.ClientIP(), c.Param("id"))
		allowed, err := rl.limiter.Allow(c.Request.Context(), key, rl.config)
		if err != nil {
			rl.logger.Warnw("rate limiter unavailable, allowing request", "error", err, "key", key)
			c.Next()
			return
		}

		if !allowed {
			rl.logger.Infow("submission rate limit exceeded", "ip", c.ClientIP(), "form_id", c.Param("id"))
			utils.ErrorResponseWithError(c, apperrors.NewTooManyRequestsError("too many submissions, please try again later"))
			c.Abort()
			return
		}

		c.Next()
	}
}

package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amzibnewman/altrii-backend/internal/infrastructure/ratelimit"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
	"github.com/amzibnewman/altrii-backend/internal/shared/utils"
)

// emergencyCancelLimits throttles the emergency cancellation endpoint per
// user. The path removes an MDM restriction, so repeated hammering is a
// signal of abuse rather than legitimate use.
var emergencyCancelLimits = ratelimit.RateLimitConfig{
	RequestsPerMinute: 3,
	RequestsPerHour:   10,
	RequestsPerDay:    20,
}

type RateLimitMiddleware struct {
	limiter ratelimit.RateLimiter
	logger  logger.Interface
}

func NewRateLimitMiddleware(limiter ratelimit.RateLimiter, logger logger.Interface) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
	}
}

// LimitEmergencyCancel enforces per-user limits on emergency cancellation.
func (m *RateLimitMiddleware) LimitEmergencyCancel() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDValue, exists := c.Get("user_id")
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}

		userID, ok := userIDValue.(uint)
		if !ok {
			m.logger.Errorw("invalid user ID type in context")
			utils.ErrorResponse(c, http.StatusInternalServerError, "invalid user ID")
			c.Abort()
			return
		}

		key := fmt.Sprintf("emergency_cancel:%d", userID)
		allowed, err := m.limiter.Allow(key, emergencyCancelLimits)
		if err != nil {
			// Redis being down should not lock users out of the
			// emergency path.
			m.logger.Errorw("rate limit check failed", "error", err, "user_id", userID)
			c.Next()
			return
		}

		if !allowed {
			m.logger.Warnw("emergency cancel rate limit exceeded", "user_id", userID)
			utils.ErrorResponse(c, http.StatusTooManyRequests, "too many cancellation attempts, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}

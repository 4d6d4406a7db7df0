package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ejoheza/backend/internal/cache"
	"github.com/ejoheza/backend/pkg/response"
)

// RateLimit allows limit requests per client IP per window on the routes it guards.
// Counter failures let the request through.
func RateLimit(counter cache.Counter, scope string, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}
		n, err := counter.Incr(c.Request.Context(), "ratelimit:"+scope+":"+c.ClientIP(), window)
		if err != nil {
			logger.Warn("rate limit counter failed", zap.Error(err))
			c.Next()
			return
		}
		if n > int64(limit) {
			response.TooManyRequests(c, "too many requests, please try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}

package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"smartcart/api/internal/ratelimit"
)

// anonymousKey stands in when no client IP is observable.
const anonymousKey = "anonymous"

// RateLimit consults the limiter before the inner chain runs; on exhaustion
// it answers 429 and the wrapped handler never executes. A failing counter
// store lets the request through: throttling degrades, the service does not.
func RateLimit(limiter *ratelimit.Limiter, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if key == "" {
			key = anonymousKey
		}

		if err := limiter.Consume(c.Request.Context(), key); err != nil {
			if errors.Is(err, ratelimit.ErrLimitExhausted) {
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
				return
			}
			log.Warn().Err(err).Str("key", key).Msg("rate limit store failure")
		}

		c.Next()
	}
}

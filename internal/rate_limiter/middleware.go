package rate_limiter

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware throttles mutating requests per client IP. Reads pass through;
// the limit is sized for scan guns feeding the serial endpoints.
func Middleware(limit int, window time.Duration) gin.HandlerFunc {
	rl := NewRateLimiter(limit, window)
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		if !rl.IsAllowed(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, slow down",
			})
			return
		}

		c.Next()
	}
}

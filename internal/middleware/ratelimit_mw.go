package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// RateLimit enforces a fixed-window limit per client IP: max requests per
// window, then 429 until the window entry expires. Counters live in the
// injected TTL cache; the entry TTL is the window, so expiry resets the count.
func RateLimit(counters *cache.Cache, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit-" + c.ClientIP()

		// Add is a no-op when the window entry already exists
		_ = counters.Add(key, int64(0), window)
		count, err := counters.IncrementInt64(key, 1)
		if err != nil {
			// Entry expired between Add and Increment; start a new window
			counters.Set(key, int64(1), window)
			count = 1
		}

		if count > int64(max) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, try again later."})
			return
		}

		c.Next()
	}
}

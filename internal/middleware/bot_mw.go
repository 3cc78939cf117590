package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BotFilter rejects requests with no User-Agent or one containing "bot"
// (case-insensitive). It only stops crawlers that identify themselves.
func BotFilter() gin.HandlerFunc {
	return func(c *gin.Context) {
		userAgent := c.GetHeader("User-Agent")
		if userAgent == "" || strings.Contains(strings.ToLower(userAgent), "bot") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Bots are not allowed"})
			return
		}

		c.Next()
	}
}

package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MetricsAuthMiddleware protects the metrics endpoint with a static Bearer token.
// An empty token leaves the endpoint open.
func MetricsAuthMiddleware(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) { c.Next() }
	}

	deny := func(c *gin.Context, message string) {
		c.Header("WWW-Authenticate", `Bearer realm="Metrics"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": message,
		})
	}

	return func(c *gin.Context) {
		provided, ok := bearerToken(c)
		if !ok {
			deny(c, "Bearer token required")
			return
		}

		// Constant-time comparison to prevent timing attacks
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			deny(c, "Invalid token")
			return
		}

		c.Next()
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"
)

// ContextClientIP is the gin context key holding the caller's IP
const ContextClientIP = "client_ip"

// IPMiddleware extracts client IP and stores it in the context
func IPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Gin's ClientIP() handles X-Forwarded-For and other headers
		c.Set(ContextClientIP, c.ClientIP())
		c.Next()
	}
}

// ClientIPFromContext returns the IP stored by IPMiddleware, falling back to gin's lookup
func ClientIPFromContext(c *gin.Context) string {
	if ip := c.GetString(ContextClientIP); ip != "" {
		return ip
	}
	return c.ClientIP()
}

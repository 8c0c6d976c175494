package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// bearerToken returns the token from an "Authorization: Bearer <token>" header.
// ok is false when the header is missing or uses another scheme.
func bearerToken(c *gin.Context) (token string, ok bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token = strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	return token, token != ""
}

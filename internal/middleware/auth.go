package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionUserID = "user_id"

	// ContextUserID is the gin context key holding the authenticated user id
	ContextUserID = "user_id"
)

var (
	ErrMissingSubject = errors.New("token has no subject")
	ErrInvalidToken   = errors.New("invalid identity token")
)

// RequireUser resolves the caller's user id from the session or, when
// jwtSecret is set, from an HS256 Bearer token whose "sub" is the user id.
// Requests without an identity are rejected with 401.
func RequireUser(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID, ok := session.Get(SessionUserID).(string); ok && userID != "" {
			c.Set(ContextUserID, userID)
			c.Next()
			return
		}

		if jwtSecret != "" {
			if raw, ok := bearerToken(c); ok {
				userID, err := parseIdentityToken(raw, jwtSecret)
				if err == nil {
					c.Set(ContextUserID, userID)
					c.Next()
					return
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":             "unauthorized",
			"error_description": "Sign in required",
		})
	}
}

// UserIDFromContext returns the id set by RequireUser, or "" when absent
func UserIDFromContext(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func parseIdentityToken(raw, secret string) (string, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if subject == "" {
		return "", ErrMissingSubject
	}
	return subject, nil
}

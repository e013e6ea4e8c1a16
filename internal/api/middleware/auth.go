// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware guards the admin routes with a static bearer token.
type AuthMiddleware struct {
	adminToken string
}

// NewAuthMiddleware creates a new AuthMiddleware. An empty token rejects
// every admin request.
func NewAuthMiddleware(adminToken string) *AuthMiddleware {
	return &AuthMiddleware{
		adminToken: adminToken,
	}
}

// Authenticate returns a gin middleware that validates the Bearer token.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.adminToken == "" {
			abortUnauthorized(c, "admin access is not configured")
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		// Extract Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			abortUnauthorized(c, "empty token")
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(m.adminToken)) != 1 {
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Code:    "UNAUTHORIZED",
		Message: message,
	})
}

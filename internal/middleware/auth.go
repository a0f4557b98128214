package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenAuthenticator resolves a plain bearer token to the owning user's
// ID. The token service implements it over the access_tokens table.
type TokenAuthenticator interface {
	AuthenticateToken(plainToken string) (userID uint, userKey string, err error)
}

// Auth verifies the Authorization bearer token against the stored token
// digests and sets the user's ID and key on the context. Revoked and
// expired tokens are rejected the same way as unknown ones.
func Auth(tokens TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		userID, userKey, err := tokens.AuthenticateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Set("userKey", userKey)
		c.Set("accessToken", parts[1])
		c.Next()
	}
}

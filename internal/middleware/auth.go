package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smartcart/api/internal/security"
)

const userIDKey = "auth_user_id"

// Auth requires a bearer access token and makes the verified user id
// available through the request context. Verification is stateless: a token
// stays valid until natural expiry, revoking the refresh token does not
// recall access tokens already in the wild.
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token required"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := security.VerifyAccessToken(tokenStr, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the verified user id set by Auth.
func UserID(c *gin.Context) (string, bool) {
	val, exists := c.Get(userIDKey)
	if !exists {
		return "", false
	}
	userID, ok := val.(string)
	return userID, ok && userID != ""
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/sainivas456/TaskFlow-sub000/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

const UserIDKey = "user_id"

// Auth validates the Authorization bearer token and stores the caller's user
// id in the request context. Requests without a valid token never reach a
// handler.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing authorization header"})
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid authorization header"})
			return
		}

		claims, err := utils.ParseJWT(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}
		if t, _ := claims["type"].(string); t == "refresh" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "refresh token cannot be used for access"})
			return
		}

		userIDStr, _ := claims[UserIDKey].(string)
		userID, err := uuid.FromString(userIDStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid user id in token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated caller's id set by Auth.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

package api

import (
	"net/http"
	"strings"

	"github.com/avolare/skybook/internal/auth"
	"github.com/avolare/skybook/internal/domain"
	"github.com/avolare/skybook/internal/service/users"
	"github.com/gin-gonic/gin"
)

const userContextKey = "current_user"

// RequireAuth resolves the bearer token into a user record. The token is
// trusted for identity; the user row is loaded so role changes take effect
// without reissuing tokens.
func RequireAuth(manager *auth.Manager, userSvc users.UserUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header missing"})
			return
		}

		claims, err := manager.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		user, err := userSvc.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *domain.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := value.(*domain.User)
	return user
}

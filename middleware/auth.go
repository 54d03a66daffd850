package middleware

import (
	"net/http"
	"strings"

	"mall-backend/models"
	"mall-backend/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by the middleware in this package.
const (
	ContextUserID     = "user_id"
	ContextUserRole   = "user_role"
	ContextSessionKey = "session_key"
)

// bearerClaims parses the Authorization header. ok is false when the header is
// absent; errMsg is set when it is present but unusable.
func bearerClaims(c *gin.Context) (claims *utils.Claims, ok bool, errMsg string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false, ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, true, "Invalid authorization header format"
	}

	claims, err := utils.ValidateToken(parts[1])
	if err != nil {
		return nil, true, "Invalid or expired token"
	}
	return claims, true, ""
}

func setClaims(c *gin.Context, claims *utils.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUserRole, claims.Role)
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, present, errMsg := bearerClaims(c)
		if !present {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}
		if errMsg != "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errMsg})
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextUserRole)
		if !exists || role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"strings"

	"mall-backend/models"
	"mall-backend/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const SessionHeader = "X-Session-Key"

const maxSessionKeyLen = 40

// IdentityMiddleware resolves who a cart request acts for. A bearer token is
// optional but must be valid when sent. Anonymous callers without a session key
// are issued one in the X-Session-Key response header.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, present, errMsg := bearerClaims(c)
		if errMsg != "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errMsg})
			c.Abort()
			return
		}
		if present {
			setClaims(c, claims)
		}

		key := strings.TrimSpace(c.GetHeader(SessionHeader))
		if len(key) > maxSessionKeyLen {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Session key must be at most 40 characters"})
			c.Abort()
			return
		}
		if key == "" && !present {
			key = NewSessionKey()
		}
		if key != "" {
			c.Set(ContextSessionKey, key)
			c.Header(SessionHeader, key)
		}
		c.Next()
	}
}

// NewSessionKey returns a random 32 character key.
func NewSessionKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// UserID returns the authenticated user, if any.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func SessionKey(c *gin.Context) string {
	return c.GetString(ContextSessionKey)
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString(ContextUserRole) == models.RoleAdmin
}

// CurrentIdentity builds the store identity for the request.
func CurrentIdentity(c *gin.Context) store.Identity {
	identity := store.Identity{SessionKey: SessionKey(c)}
	if id, ok := UserID(c); ok {
		identity.UserID = &id
	}
	return identity
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/gin-gonic/gin"
)

// Context keys set by Auth
const (
	ContextUserID   = "user_id"
	ContextIdentity = "identity"
	ContextToken    = "token"
)

// Anonymous desktop used when authentication is not required
const (
	LocalUserID   = "local"
	LocalIdentity = "guest"
)

// SessionSource resolves bearer tokens
type SessionSource interface {
	GetSession(ctx context.Context, token string) types.AuthResult
}

// Auth resolves the caller from an Authorization bearer token. When required
// is false, requests without a token run as the shared local desktop; a token
// that is present must still be valid.
func Auth(source SessionSource, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.Request)
		if token == "" {
			token = c.Query("token")
		}

		if token == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
				return
			}
			c.Set(ContextUserID, LocalUserID)
			c.Set(ContextIdentity, LocalIdentity)
			c.Next()
			return
		}

		result := source.GetSession(c.Request.Context(), token)
		if result.Error != "" || result.User == nil {
			msg := result.Error
			if msg == "" {
				msg = "invalid session"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(ContextUserID, result.User.ID)
		c.Set(ContextIdentity, result.User.Email)
		c.Set(ContextToken, token)
		c.Next()
	}
}

// BearerToken extracts the token from an Authorization header
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// UserID returns the caller resolved by Auth
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// Identity returns the caller's display identity
func Identity(c *gin.Context) string {
	return c.GetString(ContextIdentity)
}

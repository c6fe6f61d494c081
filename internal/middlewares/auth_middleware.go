package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sourcingagent/backend/internal/models"
	"sourcingagent/backend/internal/utils"
)

const (
	identityKey = "identity"
	jtiKey      = "jti"
)

// UserFinder resolves the token subject to a full user record.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenChecker reports whether a token's JTI has been revoked.
type TokenChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Authenticate verifies the Bearer token, rejects revoked or inactive
// callers, and stores the resolved identity in the request context.
func Authenticate(secret []byte, users UserFinder, tokens TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing Authorization header"})
			return
		}

		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid Authorization format"})
			return
		}

		claims, err := utils.VerifyToken(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		if revoked, err := tokens.IsBlacklisted(c.Request.Context(), claims.ID); err != nil || revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token has been revoked"})
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token subject"})
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil || user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "User account is inactive"})
			return
		}

		c.Set(identityKey, models.Identity{UserID: user.ID, IsAdmin: user.IsAdmin})
		c.Set(jtiKey, claims.ID)

		c.Next()
	}
}

// CurrentIdentity returns the identity resolved by Authenticate.
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return models.Identity{}, false
	}
	ident, ok := v.(models.Identity)
	return ident, ok
}

// CurrentJTI returns the token id resolved by Authenticate.
func CurrentJTI(c *gin.Context) (string, bool) {
	v, exists := c.Get(jtiKey)
	if !exists {
		return "", false
	}
	jti, ok := v.(string)
	return jti, ok
}

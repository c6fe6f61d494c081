package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin rejects non-admin callers. Must run after Authenticate.
func RequireAdmin(c *gin.Context) {
	ident, ok := CurrentIdentity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if !ident.IsAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied. Admin privileges required."})
		return
	}

	c.Next()
}

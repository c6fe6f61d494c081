package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sourcingagent/backend/internal/handlers"
)

// RegisterRoutes wires every route group onto the engine. The auth middleware
// is built by the server with its dependencies and handed down here.
func RegisterRoutes(
	router *gin.Engine,
	authenticate gin.HandlerFunc,
	authHandler *handlers.AuthHandler,
	searchHandler *handlers.SearchHandler,
	adminHandler *handlers.AdminHandler,
) {
	api := router.Group("/api/v1")

	authRoutes := NewAuthRoutes(authHandler, authenticate)
	authRoutes.RegisterRoutes(api)

	searchRoutes := NewSearchRoutes(searchHandler, authenticate)
	searchRoutes.RegisterRoutes(api)

	adminRoutes := NewAdminRoutes(adminHandler, authenticate)
	adminRoutes.RegisterRoutes(api)

	healthz := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
	router.GET("/", healthz)
	router.GET("/health", healthz)
}

package routes

import (
	"github.com/gin-gonic/gin"

	"sourcingagent/backend/internal/handlers"
)

type AuthRoutes struct {
	handler      *handlers.AuthHandler
	authenticate gin.HandlerFunc
}

func NewAuthRoutes(handler *handlers.AuthHandler, authenticate gin.HandlerFunc) *AuthRoutes {
	return &AuthRoutes{handler: handler, authenticate: authenticate}
}

func (r *AuthRoutes) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		// Public routes
		auth.POST("/login", r.handler.Login)

		// Protected routes
		protected := auth.Group("/")
		protected.Use(r.authenticate)
		protected.POST("/logout", r.handler.Logout)
		protected.GET("/me", r.handler.Me)
		protected.PUT("/password", r.handler.UpdatePassword)
	}
}

package routes

import (
	"github.com/gin-gonic/gin"

	"sourcingagent/backend/internal/handlers"
	"sourcingagent/backend/internal/middlewares"
)

type AdminRoutes struct {
	handler      *handlers.AdminHandler
	authenticate gin.HandlerFunc
}

func NewAdminRoutes(handler *handlers.AdminHandler, authenticate gin.HandlerFunc) *AdminRoutes {
	return &AdminRoutes{handler: handler, authenticate: authenticate}
}

func (r *AdminRoutes) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	admin.Use(r.authenticate, middlewares.RequireAdmin)
	{
		// User management
		admin.POST("/users", r.handler.CreateUser)
		admin.GET("/users", r.handler.ListUsers)
		admin.GET("/users/:id", r.handler.GetUser)
		admin.PATCH("/users/:id", r.handler.UpdateUser)
		admin.DELETE("/users/:id", r.handler.DeleteUser)
		admin.POST("/users/:id/activate", r.handler.SetUserActive(true))
		admin.POST("/users/:id/deactivate", r.handler.SetUserActive(false))
		admin.POST("/users/:id/reset-password", r.handler.ResetPassword)
		admin.GET("/users/:id/queries", r.handler.ListUserQueries)

		// Cross-user query management
		admin.DELETE("/queries/:id", r.handler.DeleteQuery)
	}
}

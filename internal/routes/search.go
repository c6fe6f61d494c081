package routes

import (
	"github.com/gin-gonic/gin"

	"sourcingagent/backend/internal/handlers"
)

type SearchRoutes struct {
	handler      *handlers.SearchHandler
	authenticate gin.HandlerFunc
}

func NewSearchRoutes(handler *handlers.SearchHandler, authenticate gin.HandlerFunc) *SearchRoutes {
	return &SearchRoutes{handler: handler, authenticate: authenticate}
}

func (r *SearchRoutes) RegisterRoutes(router *gin.RouterGroup) {
	search := router.Group("/search")
	search.Use(r.authenticate)
	{
		// Query generation and execution
		search.POST("/generate", r.handler.Generate)
		search.POST("/execute/:id", r.handler.Execute)
		search.POST("/generate-and-execute", r.handler.GenerateAndExecute)

		// Stored queries and results
		search.GET("/queries", r.handler.ListQueries)
		search.GET("/queries/:id", r.handler.GetQuery)
		search.GET("/queries/:id/results", r.handler.ListResults)
		search.GET("/queries/:id/export", r.handler.Export)
		search.POST("/queries/:id/refine", r.handler.Refine)
		search.DELETE("/queries/:id", r.handler.DeleteQuery)

		search.POST("/results/:id/enrich", r.handler.MarkEnriched)
	}
}

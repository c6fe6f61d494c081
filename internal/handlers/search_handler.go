package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sourcingagent/backend/internal/middlewares"
	"sourcingagent/backend/internal/models"
	"sourcingagent/backend/internal/responses"
	"sourcingagent/backend/internal/services"
	"sourcingagent/backend/internal/utils"
)

type SearchHandler struct {
	searchService *services.SearchService
	exportService *services.ExportService
}

func NewSearchHandler(searchService *services.SearchService, exportService *services.ExportService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		exportService: exportService,
	}
}

type generateQueryRequest struct {
	UserInput string `json:"user_input" binding:"required"`
}

type refineQueryRequest struct {
	Instructions string `json:"instructions" binding:"required"`
}

type executeResponse struct {
	Query   *models.SearchQuery        `json:"query,omitempty"`
	Summary *services.ExecutionSummary `json:"summary,omitempty"`
}

// Generate handles POST /api/v1/search/generate
func (h *SearchHandler) Generate(c *gin.Context) {
	ident, ok := middlewares.CurrentIdentity(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	var req generateQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	query, err := h.searchService.Generate(c.Request.Context(), ident, req.UserInput)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusCreated, query, "Search query generated successfully")
}

// Execute handles POST /api/v1/search/execute/:id
func (h *SearchHandler) Execute(c *gin.Context) {
	ident, ok := middlewares.CurrentIdentity(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	queryID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid query id")
		return
	}

	summary, err := h.searchService.Execute(c.Request.Context(), ident, queryID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, summary, "Search executed successfully")
}

// GenerateAndExecute handles POST /api/v1/search/generate-and-execute
func (h *SearchHandler) GenerateAndExecute(c *gin.Context) {
	ident, ok := middlewares.CurrentIdentity(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	var req generateQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	query, summary, err := h.searchService.GenerateAndExecute(c.Request.Context(), ident, req.UserInput)
	if err != nil {
		if query != nil {
			// The query persisted even though execution failed; return both
			// the query and the execution error.
			c.JSON(http.StatusMultiStatus, responses.APIResponse{
				Status:  "partial",
				Message: "Query generated but execution failed",
				Data:    executeResponse{Query: query},
				Error:   err.Error(),
			})
			return
		}
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, executeResponse{Query: query, Summary: summary}, "Search generated and executed successfully")
}

// Refine handles POST /api/v1/search/queries/:id/refine
func (h *SearchHandler) Refine(c *gin.Context) {
	ident, ok := middlewares.CurrentIdentity(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	queryID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid query id")
		return
	}

	var req refineQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	query, err := h.searchService.Refine(c.Request.Context(), ident, queryID, req.Instructions)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusCreated, query, "Search query refined successfully")
}

// ListQueries handles GET /api/v1/search/queries
func (h *SearchHandler) ListQueries(c *gin.Context) {
	ident, ok := middlewares.CurrentIdentity(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	skip, limit := pagination(c, services.DefaultQueryPageLimit)

	queries, err := h.searchService.ListQueries(c.Request.Context(), ident, skip, limit)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, queries, "Queries retrieved successfully")
}

// GetQuery handles GET /api/v1/search/queries/:id
func (h *SearchHandler) GetQuery(c *gin.Context) {
	ident, ok := middlewares.CurrentIdentity(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	queryID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid query id")
		return
	}

	query, err := h.searchService.GetQuery(c.Request.Context(), ident, queryID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, query, "Query retrieved successfully")
}

// ListResults handles GET /api/v1/search/queries/:id/results
func (h *SearchHandler) ListResults(c *gin.Context) {
	ident, ok := middlewares.CurrentIdentity(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	queryID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid query id")
		return
	}

	skip, limit := pagination(c, services.DefaultResultPageLimit)

	page, err := h.searchService.ListResults(c.Request.Context(), ident, queryID, skip, limit)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, page, "Results retrieved successfully")
}

// DeleteQuery handles DELETE /api/v1/search/queries/:id
func (h *SearchHandler) DeleteQuery(c *gin.Context) {
	ident, ok := middlewares.CurrentIdentity(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	queryID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid query id")
		return
	}

	if err := h.searchService.DeleteQuery(c.Request.Context(), ident, queryID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, nil, "Search query deleted successfully")
}

// MarkEnriched handles POST /api/v1/search/results/:id/enrich
func (h *SearchHandler) MarkEnriched(c *gin.Context) {
	ident, ok := middlewares.CurrentIdentity(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	resultID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid result id")
		return
	}

	result, err := h.searchService.MarkEnriched(c.Request.Context(), ident, resultID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"id":                 result.ID,
		"enriched_timestamp": result.EnrichedTimestamp,
	}, "Result marked as enriched")
}

// Export handles GET /api/v1/search/queries/:id/export
func (h *SearchHandler) Export(c *gin.Context) {
	ident, ok := middlewares.CurrentIdentity(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	queryID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid query id")
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=search_results_%s.csv", queryID))

	if err := h.exportService.Export(c.Request.Context(), ident, queryID, c.Writer); err != nil {
		if !c.Writer.Written() {
			c.Header("Content-Type", "application/json; charset=utf-8")
			c.Header("Content-Disposition", "")
			responses.Error(c, err)
			return
		}
		// Stream already started; nothing to do but abandon it.
		c.Abort()
	}
}

func pagination(c *gin.Context, defaultLimit int) (int, int) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	return skip, limit
}

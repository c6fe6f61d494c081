package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sourcingagent/backend/internal/middlewares"
	"sourcingagent/backend/internal/responses"
	"sourcingagent/backend/internal/services"
	"sourcingagent/backend/internal/utils"
)

// AdminHandler serves the user management endpoints and the cross-user query
// views. The admin middleware guards the whole group, so handlers here only
// need the identity for self-referential checks.
type AdminHandler struct {
	userService   *services.UserService
	searchService *services.SearchService
}

func NewAdminHandler(userService *services.UserService, searchService *services.SearchService) *AdminHandler {
	return &AdminHandler{
		userService:   userService,
		searchService: searchService,
	}
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// CreateUser handles POST /api/v1/admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusCreated, user, "User created successfully")
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	skip, limit := pagination(c, services.DefaultQueryPageLimit)

	users, err := h.userService.List(c.Request.Context(), skip, limit)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, users, "Users retrieved successfully")
}

// GetUser handles GET /api/v1/admin/users/:id
func (h *AdminHandler) GetUser(c *gin.Context) {
	userID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid user id")
		return
	}

	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, user, "User retrieved successfully")
}

// UpdateUser handles PATCH /api/v1/admin/users/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	userID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid user id")
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	user, err := h.userService.Update(c.Request.Context(), userID, req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, user, "User updated successfully")
}

// SetUserActive handles POST /api/v1/admin/users/:id/activate and
// POST /api/v1/admin/users/:id/deactivate.
func (h *AdminHandler) SetUserActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := middlewares.CurrentIdentity(c)
		if !ok {
			responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
			return
		}

		userID, err := utils.ParseUUID(c.Param("id"))
		if err != nil {
			responses.Fail(c, http.StatusBadRequest, err, "Invalid user id")
			return
		}

		user, err := h.userService.SetActive(c.Request.Context(), ident.UserID, userID, active)
		if err != nil {
			responses.Error(c, err)
			return
		}

		msg := "User deactivated successfully"
		if active {
			msg = "User activated successfully"
		}
		responses.Success(c, http.StatusOK, user, msg)
	}
}

// ResetPassword handles POST /api/v1/admin/users/:id/reset-password
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	userID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid user id")
		return
	}

	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), userID, req.NewPassword); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, nil, "Password reset successfully")
}

// DeleteUser handles DELETE /api/v1/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	ident, ok := middlewares.CurrentIdentity(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	userID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid user id")
		return
	}

	if err := h.userService.Delete(c.Request.Context(), ident.UserID, userID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, nil, "User deleted successfully")
}

// ListUserQueries handles GET /api/v1/admin/users/:id/queries
func (h *AdminHandler) ListUserQueries(c *gin.Context) {
	ident, ok := middlewares.CurrentIdentity(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	userID, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid user id")
		return
	}

	skip, limit := pagination(c, services.DefaultQueryPageLimit)

	queries, err := h.searchService.ListQueriesByUser(c.Request.Context(), ident, userID, skip, limit)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, queries, "Queries retrieved successfully")
}

// DeleteQuery handles DELETE /api/v1/admin/queries/:id
func (h *AdminHandler) DeleteQuery(c *gin.Context) {
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

	if err := h.searchService.AdminDeleteQuery(c.Request.Context(), ident, queryID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, nil, "Search query deleted successfully")
}

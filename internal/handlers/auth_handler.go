package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sourcingagent/backend/internal/middlewares"
	"sourcingagent/backend/internal/responses"
	"sourcingagent/backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	token, _, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, token, "Login successful")
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, ok := middlewares.CurrentJTI(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), jti); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, nil, "Logged out successfully")
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	ident, ok := middlewares.CurrentIdentity(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	user, err := h.userService.Get(c.Request.Context(), ident.UserID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, user, "User retrieved successfully")
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// UpdatePassword handles PUT /api/v1/auth/password
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	ident, ok := middlewares.CurrentIdentity(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), ident.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, http.StatusOK, nil, "Password updated successfully")
}

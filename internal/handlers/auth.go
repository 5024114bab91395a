package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codehive/server/internal/config"
	"github.com/codehive/server/internal/middleware"
	"github.com/codehive/server/internal/services"
	"github.com/codehive/server/pkg/response"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthHandler {
	return &AuthHandler{
		authService: services.NewAuthService(db, jwtCfg),
	}
}

// Register creates a new account
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, user)
}

// Login authenticates a user and returns a token pair
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"token":             result.AccessToken,
		"expire_at":         result.AccessExpireAt,
		"refresh_token":     result.RefreshToken,
		"refresh_expire_at": result.RefreshExpireAt,
		"user":              result.User,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh rotates a refresh token and returns a new pair
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Refresh(req.RefreshToken, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"token":             result.AccessToken,
		"expire_at":         result.AccessExpireAt,
		"refresh_token":     result.RefreshToken,
		"refresh_expire_at": result.RefreshExpireAt,
	})
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the presented refresh token
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req logoutRequest
	// Body is optional; logout without a refresh token still succeeds.
	_ = c.ShouldBindJSON(&req)

	if err := h.authService.RevokeRefreshToken(req.RefreshToken); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's profile
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.GetUserByID(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

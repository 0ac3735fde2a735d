package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"logipro/internal/middleware"
	"logipro/internal/usecase/user"
	"logipro/pkg/utils"
)

type UserHandler struct {
	service *user.Service
}

func NewUserHandler(service *user.Service) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/token", h.Login)
		auth.POST("/firebase", h.ExchangeIdentityToken)
		auth.POST("/token/refresh", h.RefreshToken)
	}
}

func (h *UserHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.POST("/auth/revoke", h.RevokeToken)

	me := router.Group("/users/me")
	{
		me.GET("", h.GetProfile)
		me.PUT("", h.UpdateProfile)
		me.POST("/change-password", h.ChangePassword)
	}
}

func (h *UserHandler) RegisterStaffRoutes(router *gin.RouterGroup) {
	router.GET("/users", h.ListUsers)
	router.POST("/users", h.CreateUser)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Login successful", authResponse)
}

func (h *UserHandler) ExchangeIdentityToken(c *gin.Context) {
	var req user.IdentityTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.service.ExchangeIdentityToken(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Login successful", authResponse)
}

// RefreshToken accepts the refresh token in the body or, as older clients
// send it, in the Authorization header.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	token, ok := refreshTokenFrom(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Refresh token required")
		return
	}

	tokenPair, err := h.service.RefreshToken(c.Request.Context(), token)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Token refreshed successfully", tokenPair)
}

func (h *UserHandler) RevokeToken(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req user.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.RevokeToken(c.Request.Context(), p.UserID, req.RefreshToken); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Token revoked successfully", nil)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), p.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", profile)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), p.UserID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile updated successfully", profile)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req user.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), p.UserID, &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Password changed successfully", nil)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	var req user.ListUsersRequest
	if !bindQuery(c, &req) {
		return
	}

	users, err := h.service.ListUsers(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Users retrieved successfully", users)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req user.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.service.CreateStaffUser(c.Request.Context(), p, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "User created successfully", created)
}

func refreshTokenFrom(c *gin.Context) (string, bool) {
	var req user.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken, true
	}
	return middleware.BearerToken(c)
}

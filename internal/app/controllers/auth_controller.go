// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/atomclub/attendance/internal/app/models/dto"
	"github.com/atomclub/attendance/internal/app/services"
	"github.com/atomclub/attendance/internal/middleware"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Login handles portal login
// @Summary Log in to a portal
// @Description Authenticates a user against the selected portal. The role is part of the credential: a role mismatch fails like a wrong password.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Authenticated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// Refresh exchanges a refresh token for a new access token
// @Summary Refresh the access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.RefreshTokenResponse} "Renewed"
// @Failure 401 {object} dto.ErrorResponse "Token unknown, expired or revoked"
// @Router /auth/refresh [post]
func (c *AuthController) Refresh(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	resp, err := c.authService.Refresh(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// Logout revokes the session's refresh token
// @Summary Log out
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LogoutRequest true "Refresh token to revoke"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Logged out"
// @Security BearerAuth
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	var req dto.LogoutRequest
	// A missing body still logs out; there is just nothing to revoke.
	_ = ctx.ShouldBindJSON(&req)

	if err := c.authService.Logout(ctx.Request.Context(), req.RefreshToken); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "logged out"}))
}

// Me returns the authenticated user's profile
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.UserInfo} "The resolved identity"
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Security BearerAuth
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	viewer, ok := middleware.CurrentViewer(ctx)
	if !ok {
		detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
		return
	}

	info, err := c.authService.CurrentUser(ctx.Request.Context(), viewer.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(info))
}

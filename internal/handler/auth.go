package handler

import (
	"net/http"

	"github.com/MaksymY11/mates-backend/internal/constants"
	"github.com/MaksymY11/mates-backend/internal/dto"
	apperrors "github.com/MaksymY11/mates-backend/internal/errors"
	"github.com/MaksymY11/mates-backend/internal/service"
	ctxutil "github.com/MaksymY11/mates-backend/pkg/context"
	"github.com/MaksymY11/mates-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService   *service.AuthService
	secureCookies bool
}

func NewAuthHandler(authService *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
	}
}

// Register handles new account creation.
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContext(c.Request.Context(), c.Request, "handler", "Register")

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid register request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", bindingDetails(err)))
		return
	}

	if err := h.authService.Register(ctx, req.Email, req.Password); err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Registration failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusCreated, constants.BuildSuccessResponse("User registered successfully"))
}

// Login handles user authentication. The access token goes in the response
// body, the refresh token additionally in an http-only strict-same-site
// cookie scoped to the auth endpoints.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContext(c.Request.Context(), c.Request, "handler", "Login")

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid login request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", bindingDetails(err)))
		return
	}

	response, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Authentication failed", apperrors.GetErrorMessage(err)))
		return
	}

	h.setRefreshCookie(c, response.RefreshToken)
	c.JSON(http.StatusOK, response)
}

// Refresh rotates the presented refresh token and issues a new token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := ctxutil.NewContext(c.Request.Context(), c.Request, "handler", "Refresh")

	presented := h.presentedRefreshToken(c)

	response, err := h.authService.Refresh(ctx, presented)
	if err != nil {
		h.clearRefreshCookie(c)
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Token refresh failed", apperrors.GetErrorMessage(err)))
		return
	}

	h.setRefreshCookie(c, response.RefreshToken)
	c.JSON(http.StatusOK, response)
}

// Logout revokes the presented refresh token and clears the cookie. Always
// succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxutil.NewContext(c.Request.Context(), c.Request, "handler", "Logout")

	presented := h.presentedRefreshToken(c)
	if err := h.authService.Logout(ctx, presented); err != nil {
		logger.WarnWithContext(ctx, "Logout cleanup failed").
			Err(err).
			Log()
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Logout successful"))
}

// presentedRefreshToken reads the refresh token from the cookie, falling
// back to the request body for non-browser clients.
func (h *AuthHandler) presentedRefreshToken(c *gin.Context) string {
	if cookie, err := c.Cookie(constants.RefreshTokenCookie); err == nil && cookie != "" {
		return cookie
	}

	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	maxAge := int(h.authService.RefreshTTL().Seconds())
	c.SetCookie(constants.RefreshTokenCookie, token, maxAge, constants.RefreshTokenCookiePath, "", h.secureCookies, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(constants.RefreshTokenCookie, "", -1, constants.RefreshTokenCookiePath, "", h.secureCookies, true)
}

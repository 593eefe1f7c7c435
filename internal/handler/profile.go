package handler

import (
	"io"
	"net/http"

	"github.com/MaksymY11/mates-backend/internal/constants"
	"github.com/MaksymY11/mates-backend/internal/dto"
	apperrors "github.com/MaksymY11/mates-backend/internal/errors"
	"github.com/MaksymY11/mates-backend/internal/service"
	ctxutil "github.com/MaksymY11/mates-backend/pkg/context"
	"github.com/MaksymY11/mates-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	avatarService  *service.AvatarService
}

func NewProfileHandler(profileService *service.ProfileService, avatarService *service.AvatarService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		avatarService:  avatarService,
	}
}

// Me returns the authenticated user's profile.
func (h *ProfileHandler) Me(c *gin.Context) {
	ctx := ctxutil.NewContext(c.Request.Context(), c.Request, "handler", "Me")

	email := c.GetString(constants.GinKeyUserEmail)
	ctx = ctxutil.WithUserEmail(ctx, email)

	profile, err := h.profileService.Get(ctx, email)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Failed to load profile", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Update applies a partial profile update. Unknown fields are silently
// ignored; a request with no usable fields is rejected.
func (h *ProfileHandler) Update(c *gin.Context) {
	ctx := ctxutil.NewContext(c.Request.Context(), c.Request, "handler", "UpdateProfile")

	email := c.GetString(constants.GinKeyUserEmail)
	ctx = ctxutil.WithUserEmail(ctx, email)

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid profile update request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", bindingDetails(err)))
		return
	}

	profile, err := h.profileService.Update(ctx, email, &req)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Profile update failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UploadAvatar ingests an avatar image, either as a multipart "avatar" file
// field or as a raw request body.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	ctx := ctxutil.NewContext(c.Request.Context(), c.Request, "handler", "UploadAvatar")

	email := c.GetString(constants.GinKeyUserEmail)
	ctx = ctxutil.WithUserEmail(ctx, email)

	body, declaredType, err := uploadStream(c)
	if err != nil {
		logger.WarnWithContext(ctx, "Invalid avatar upload request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid upload", err.Error()))
		return
	}
	defer body.Close()

	response, err := h.avatarService.Upload(ctx, email, body, declaredType, requestOrigin(c))
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Avatar upload failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, response)
}

// uploadStream returns the image byte stream and its declared content type.
func uploadStream(c *gin.Context) (io.ReadCloser, string, error) {
	if file, header, err := c.Request.FormFile("avatar"); err == nil {
		return file, header.Header.Get("Content-Type"), nil
	}

	// Raw body upload: the request Content-Type declares the image type.
	return c.Request.Body, c.ContentType(), nil
}

// requestOrigin derives scheme://host for avatar URLs when no public base
// URL is configured.
func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

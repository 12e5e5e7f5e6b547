package api

import (
	"errors"
	"fmt"
	"net/http"

	"fitcycle/backend/internal/domain"
	"fitcycle/backend/internal/repository"
	"fitcycle/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler holds the user service dependency.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// --- Request Structs ---

// UpdateProfileRequest uses pointers throughout: absent fields are left
// untouched, so a PATCH with only weeklyGoalDays never clears the avatar.
type UpdateProfileRequest struct {
	WeeklyGoalDays *int           `json:"weeklyGoalDays" binding:"omitempty,min=1,max=7"`
	Gender         *domain.Gender `json:"gender" binding:"omitempty,oneof=male female other"`
	WeightKg       *float64       `json:"weightKg" binding:"omitempty,min=0,max=1000"`
	HeightCm       *float64       `json:"heightCm" binding:"omitempty,min=0,max=300"`
	AvatarURL      *string        `json:"avatarUrl" binding:"omitempty,max=500"`
}

type AvatarUploadRequest struct {
	FileName    string `json:"fileName" binding:"required,max=200"`
	ContentType string `json:"contentType" binding:"required,max=100"`
}

// --- Handler Methods ---

// GetMe returns the caller's profile.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load profile")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateMe patches the caller's profile fields.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	patch := repository.UserProfilePatch{
		WeeklyGoalDays: req.WeeklyGoalDays,
		Gender:         req.Gender,
		WeightKg:       req.WeightKg,
		HeightCm:       req.HeightCm,
		AvatarURL:      req.AvatarURL,
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidGoal),
			errors.Is(err, service.ErrInvalidGender),
			errors.Is(err, service.ErrInvalidBodyValue):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update profile")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// RequestAvatarUpload returns a presigned PUT URL for the avatar object.
func (h *UserHandler) RequestAvatarUpload(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	upload, err := h.userService.RequestAvatarUpload(c.Request.Context(), userID, req.FileName, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to prepare avatar upload")
		}
		return
	}

	c.JSON(http.StatusOK, upload)
}

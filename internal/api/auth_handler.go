package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitcycle/backend/internal/domain"
	"fitcycle/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name           string `json:"name" binding:"required,max=80"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6"`
	WeeklyGoalDays *int   `json:"weeklyGoalDays" binding:"omitempty,min=1,max=7"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// UserResponse excludes sensitive info like the password hash.
type UserResponse struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	WeeklyGoalDays int           `json:"weeklyGoalDays"`
	Gender         domain.Gender `json:"gender"`
	WeightKg       *float64      `json:"weightKg,omitempty"`
	HeightCm       *float64      `json:"heightCm,omitempty"`
	AvatarURL      string        `json:"avatarUrl,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// --- Handler Methods ---

// Register creates a new account and returns a token so the client is
// logged in immediately.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.WeeklyGoalDays)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrWeakPassword):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Token: token,
		User:  MapUserToResponse(user),
	})
}

// Login authenticates a user and returns a JWT token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: token,
		User:  MapUserToResponse(user),
	})
}

// ChangePassword verifies the current credential and stores a new one.
// Failures stay validation-class so the response never reveals which check
// tripped beyond the service message.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	err = h.authService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword),
			errors.Is(err, service.ErrSamePassword),
			errors.Is(err, service.ErrWrongPassword):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not change password")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:             user.ID.Hex(),
		Name:           user.Name,
		Email:          user.Email,
		WeeklyGoalDays: user.WeeklyGoalDays,
		Gender:         user.Gender,
		WeightKg:       user.WeightKg,
		HeightCm:       user.HeightCm,
		AvatarURL:      user.AvatarURL,
		CreatedAt:      user.CreatedAt,
	}
}

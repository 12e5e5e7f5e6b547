package service

import (
	"context"
	"errors"
	"path"
	"strings"

	"fitcycle/backend/internal/domain"
	"fitcycle/backend/internal/repository"
	"fitcycle/backend/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidGoal      = errors.New("weekly goal must be between 1 and 7 days")
	ErrInvalidGender    = errors.New("gender must be one of male, female, other")
	ErrInvalidBodyValue = errors.New("weight and height cannot be negative")
)

// AvatarUpload carries the presigned upload URL and the final public URL the
// avatar will be reachable at once the client PUTs the file.
type AvatarUpload struct {
	UploadURL string `json:"uploadUrl"`
	AvatarURL string `json:"avatarUrl"`
}

// UserService handles profile reads and updates.
type UserService interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, patch repository.UserProfilePatch) (*domain.User, error)
	RequestAvatarUpload(ctx context.Context, userID primitive.ObjectID, fileName, contentType string) (*AvatarUpload, error)
}

// userService implements the UserService interface.
type userService struct {
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository, fileStorage storage.FileStorage) UserService {
	return &userService{
		userRepo:    userRepo,
		fileStorage: fileStorage,
	}
}

// GetProfile returns the caller's profile without the credential hash.
func (s *userService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile applies the present fields after range checks. Absent fields
// are left untouched.
func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, patch repository.UserProfilePatch) (*domain.User, error) {
	if patch.WeeklyGoalDays != nil && (*patch.WeeklyGoalDays < 1 || *patch.WeeklyGoalDays > 7) {
		return nil, ErrInvalidGoal
	}
	if patch.Gender != nil {
		switch *patch.Gender {
		case domain.GenderMale, domain.GenderFemale, domain.GenderOther:
		default:
			return nil, ErrInvalidGender
		}
	}
	if patch.WeightKg != nil && *patch.WeightKg < 0 {
		return nil, ErrInvalidBodyValue
	}
	if patch.HeightCm != nil && *patch.HeightCm < 0 {
		return nil, ErrInvalidBodyValue
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// RequestAvatarUpload generates a presigned PUT URL for the avatar object and
// persists the public URL on the profile right away. The client is expected
// to upload with the same content type it declared here.
func (s *userService) RequestAvatarUpload(ctx context.Context, userID primitive.ObjectID, fileName, contentType string) (*AvatarUpload, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	ext := strings.ToLower(path.Ext(fileName))
	objectKey := "avatars/" + userID.Hex() + "/" + uuid.NewString() + ext

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}

	avatarURL := s.fileStorage.ObjectURL(objectKey)
	if _, err := s.userRepo.UpdateProfile(ctx, userID, repository.UserProfilePatch{AvatarURL: &avatarURL}); err != nil {
		return nil, err
	}

	return &AvatarUpload{
		UploadURL: uploadURL,
		AvatarURL: avatarURL,
	}, nil
}

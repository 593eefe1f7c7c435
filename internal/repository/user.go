package repository

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/MaksymY11/mates-backend/internal/errors"
	"github.com/MaksymY11/mates-backend/internal/model"
	ctxutil "github.com/MaksymY11/mates-backend/pkg/context"
	"github.com/MaksymY11/mates-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A unique-constraint violation on email is
// reported as ErrEmailExists; insertion is the conflict check, there is no
// racy read-then-write.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Create")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(user)
	duration := time.Since(start)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			logger.DebugWithContext(ctx, "Duplicate email on user insert").
				String("email", user.Email).
				Duration(duration).
				Log()
			return apperrors.WrapError(apperrors.ErrEmailExists, result.Error)
		}
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("email", user.Email).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "User created").
		String("email", user.Email).
		Int("user_id", int(user.ID)).
		Duration(duration).
		Log()

	return nil
}

// GetByEmail finds a user by email. Missing users surface as
// ErrUserNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetByEmail")

	start := time.Now()
	var user model.User
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to get user by email").
			String("email", email).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &user, nil
}

// UpdateProfile applies an already-filtered column map to the user row.
func (r *UserRepository) UpdateProfile(ctx context.Context, email string, fields map[string]interface{}) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateProfile")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Updates(fields)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update profile").
			String("email", email).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}

	logger.InfoWithContext(ctx, "Profile updated").
		String("email", email).
		Int("field_count", len(fields)).
		Duration(duration).
		Log()

	return nil
}

// UpdateAvatar sets the avatar and thumbnail URLs for the user row.
func (r *UserRepository) UpdateAvatar(ctx context.Context, email, avatarURL, thumbnailURL string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateAvatar")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Updates(map[string]interface{}{
		"avatar_url":    avatarURL,
		"thumbnail_url": thumbnailURL,
	})
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update avatar").
			String("email", email).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}

	logger.DebugWithContext(ctx, "Avatar updated").
		String("email", email).
		Duration(duration).
		Log()

	return nil
}

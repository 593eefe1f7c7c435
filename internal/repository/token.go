package repository

import (
	"context"
	"errors"
	"time"

	"github.com/MaksymY11/mates-backend/internal/model"
	ctxutil "github.com/MaksymY11/mates-backend/pkg/context"
	"github.com/MaksymY11/mates-backend/pkg/logger"
	"gorm.io/gorm"
)

// TokenRepository persists refresh tokens. Rotation atomicity rests on
// Delete reporting how many rows it removed: of two concurrent redeemers
// only one observes a non-zero count.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Insert stores a freshly issued refresh token.
func (r *TokenRepository) Insert(ctx context.Context, token *model.RefreshToken) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "InsertToken")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(token)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to insert refresh token").
			String("user_email", token.UserEmail).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.DebugWithContext(ctx, "Refresh token stored").
		String("user_email", token.UserEmail).
		Duration(duration).
		Log()

	return nil
}

// Find looks up a refresh token by value. A missing token returns (nil, nil);
// the caller decides what absence means.
func (r *TokenRepository) Find(ctx context.Context, token string) (*model.RefreshToken, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindToken")

	start := time.Now()
	var record model.RefreshToken
	result := r.db.WithContext(ctx).Where("token = ?", token).First(&record)
	duration := time.Since(start)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.ErrorWithContext(ctx, "Failed to look up refresh token").
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &record, nil
}

// Delete removes a refresh token by value and returns the number of rows
// removed. Zero rows means another request already consumed the token.
func (r *TokenRepository) Delete(ctx context.Context, token string) (int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "DeleteToken")

	start := time.Now()
	result := r.db.WithContext(ctx).Where("token = ?", token).Delete(&model.RefreshToken{})
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete refresh token").
			Duration(duration).
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

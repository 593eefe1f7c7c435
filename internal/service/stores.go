package service

import (
	"context"
	"io"

	"github.com/MaksymY11/mates-backend/internal/model"
)

// UserStore is the persistence collaborator for user records. Create must
// report a duplicate email as ErrEmailExists, detected by the store's own
// unique constraint rather than a separate existence check.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, email string, fields map[string]interface{}) error
	UpdateAvatar(ctx context.Context, email, avatarURL, thumbnailURL string) error
}

// TokenStore is the persistence collaborator for refresh tokens. Delete
// reports rows affected so rotation can detect a concurrently consumed
// token.
type TokenStore interface {
	Insert(ctx context.Context, token *model.RefreshToken) error
	Find(ctx context.Context, token string) (*model.RefreshToken, error)
	Delete(ctx context.Context, token string) (int64, error)
}

// FileStore is the filesystem collaborator for avatar files: size-capped
// streaming temp writes, an atomic temp-to-final move, and deletes.
type FileStore interface {
	WriteTemp(ctx context.Context, r io.Reader, maxBytes int64) (string, error)
	Promote(tempPath, finalName string) (string, error)
	Open(name string) (io.ReadCloser, error)
	Create(name string) (io.WriteCloser, error)
	Remove(name string) error
	RemovePath(path string) error
	PathFor(name string) string
}

package service

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/MaksymY11/mates-backend/internal/errors"
	"github.com/MaksymY11/mates-backend/internal/model"
	"gorm.io/datatypes"
)

// fakeUserStore is an in-memory UserStore with the same conflict semantics
// as the real repository.
type fakeUserStore struct {
	mu               sync.Mutex
	users            map[string]*model.User
	nextID           uint
	failUpdateAvatar bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.users[user.Email]; exists {
		return apperrors.ErrEmailExists
	}

	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	f.users[user.Email] = &clone
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, exists := f.users[email]
	if !exists {
		return nil, apperrors.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, email string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, exists := f.users[email]
	if !exists {
		return apperrors.ErrUserNotFound
	}

	for key, value := range fields {
		switch key {
		case "name":
			user.Name = value.(string)
		case "age":
			v := value.(int)
			user.Age = &v
		case "state":
			user.State = value.(string)
		case "city":
			user.City = value.(string)
		case "budget":
			v := value.(int)
			user.Budget = &v
		case "move_in_date":
			v := value.(time.Time)
			user.MoveInDate = &v
		case "bio":
			user.Bio = value.(string)
		case "lifestyle":
			user.Lifestyle = value.(datatypes.JSON)
		case "activities":
			user.Activities = value.(datatypes.JSON)
		case "prefs":
			user.Prefs = value.(datatypes.JSON)
		}
	}
	user.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserStore) UpdateAvatar(_ context.Context, email, avatarURL, thumbnailURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failUpdateAvatar {
		return apperrors.ErrInternal
	}

	user, exists := f.users[email]
	if !exists {
		return apperrors.ErrUserNotFound
	}
	user.AvatarURL = avatarURL
	user.ThumbnailURL = thumbnailURL
	return nil
}

// fakeTokenStore is an in-memory TokenStore. Delete reports rows affected
// under a single lock, giving the same at-most-once guarantee the SQL
// delete provides.
type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]model.RefreshToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]model.RefreshToken)}
}

func (f *fakeTokenStore) Insert(_ context.Context, token *model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokens[token.Token] = *token
	return nil
}

func (f *fakeTokenStore) Find(_ context.Context, token string) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, exists := f.tokens[token]
	if !exists {
		return nil, nil
	}
	clone := record
	return &clone, nil
}

func (f *fakeTokenStore) Delete(_ context.Context, token string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.tokens[token]; !exists {
		return 0, nil
	}
	delete(f.tokens, token)
	return 1, nil
}

func (f *fakeTokenStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaksymY11/mates-backend/internal/dto"
	apperrors "github.com/MaksymY11/mates-backend/internal/errors"
	"github.com/MaksymY11/mates-backend/internal/model"
)

func seedUser(t *testing.T, users *fakeUserStore, email string) {
	t.Helper()
	require.NoError(t, users.Create(context.Background(), &model.User{
		Email:        email,
		PasswordHash: "x",
		Name:         "Original",
	}))
}

func decodeUpdate(t *testing.T, body string) *dto.UpdateProfileRequest {
	t.Helper()
	var req dto.UpdateProfileRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func TestGetProfile(t *testing.T) {
	users := newFakeUserStore()
	seedUser(t, users, "alice@x.com")
	svc := NewProfileService(users, nil)

	profile, err := svc.Get(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", profile.Email)
	assert.Equal(t, "Original", profile.Name)
}

func TestGetProfileUnknownUser(t *testing.T) {
	svc := NewProfileService(newFakeUserStore(), nil)

	_, err := svc.Get(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUpdateProfileDropsUnknownFields(t *testing.T) {
	users := newFakeUserStore()
	seedUser(t, users, "alice@x.com")
	svc := NewProfileService(users, nil)

	req := decodeUpdate(t, `{"name":"Alice","unknown_field":1,"email":"hax@x.com"}`)
	profile, err := svc.Update(context.Background(), "alice@x.com", req)
	require.NoError(t, err)

	assert.Equal(t, "Alice", profile.Name)
	assert.Equal(t, "alice@x.com", profile.Email)
}

func TestUpdateProfileOnlyUnknownFields(t *testing.T) {
	users := newFakeUserStore()
	seedUser(t, users, "alice@x.com")
	svc := NewProfileService(users, nil)

	req := decodeUpdate(t, `{"unknown_field":1}`)
	_, err := svc.Update(context.Background(), "alice@x.com", req)
	assert.ErrorIs(t, err, apperrors.ErrNoUpdatableFields)

	stored, err := users.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Original", stored.Name)
}

func TestUpdateProfileAppliesFields(t *testing.T) {
	users := newFakeUserStore()
	seedUser(t, users, "alice@x.com")
	svc := NewProfileService(users, nil)

	req := decodeUpdate(t, `{
		"name": "  Alice  ",
		"age": 28,
		"city": "Austin",
		"budget": 1200,
		"move_in_date": "2026-10-01",
		"lifestyle": {"smoking": false}
	}`)
	profile, err := svc.Update(context.Background(), "alice@x.com", req)
	require.NoError(t, err)

	assert.Equal(t, "Alice", profile.Name)
	require.NotNil(t, profile.Age)
	assert.Equal(t, 28, *profile.Age)
	assert.Equal(t, "Austin", profile.City)
	require.NotNil(t, profile.Budget)
	assert.Equal(t, 1200, *profile.Budget)
	require.NotNil(t, profile.MoveInDate)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), profile.MoveInDate.UTC())
	assert.JSONEq(t, `{"smoking": false}`, string(profile.Lifestyle))
}

func TestUpdateProfileDropsBadMoveInDate(t *testing.T) {
	users := newFakeUserStore()
	seedUser(t, users, "alice@x.com")
	svc := NewProfileService(users, nil)

	req := decodeUpdate(t, `{"bio":"hello","move_in_date":"next month"}`)
	profile, err := svc.Update(context.Background(), "alice@x.com", req)
	require.NoError(t, err)

	assert.Equal(t, "hello", profile.Bio)
	assert.Nil(t, profile.MoveInDate)
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	svc := NewProfileService(newFakeUserStore(), nil)

	req := decodeUpdate(t, `{"name":"Alice"}`)
	_, err := svc.Update(context.Background(), "ghost@x.com", req)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

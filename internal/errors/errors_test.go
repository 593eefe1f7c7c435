package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error", err: nil, want: http.StatusOK},
		{name: "invalid input", err: ErrInvalidInput, want: http.StatusBadRequest},
		{name: "no updatable fields", err: ErrNoUpdatableFields, want: http.StatusBadRequest},
		{name: "unsupported image type", err: ErrUnsupportedImageType, want: http.StatusBadRequest},
		{name: "image too large", err: ErrImageTooLarge, want: http.StatusBadRequest},
		{name: "invalid image", err: ErrInvalidImage, want: http.StatusBadRequest},
		{name: "unauthorized", err: ErrUnauthorized, want: http.StatusUnauthorized},
		{name: "invalid credentials", err: ErrInvalidCredentials, want: http.StatusUnauthorized},
		{name: "invalid token", err: ErrInvalidToken, want: http.StatusUnauthorized},
		{name: "invalid refresh token", err: ErrInvalidRefreshToken, want: http.StatusUnauthorized},
		{name: "user not found", err: ErrUserNotFound, want: http.StatusNotFound},
		{name: "email exists", err: ErrEmailExists, want: http.StatusConflict},
		{name: "internal", err: ErrInternal, want: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("boom"), want: http.StatusInternalServerError},
		{name: "wrapped domain error", err: fmt.Errorf("ctx: %w", ErrEmailExists), want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.err))
		})
	}
}

func TestWrapErrorKeepsIdentity(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	wrapped := WrapError(ErrEmailExists, cause)

	assert.ErrorIs(t, wrapped, ErrEmailExists)
	assert.ErrorIs(t, wrapped, cause)
	assert.NotErrorIs(t, wrapped, ErrUserNotFound)
	assert.Contains(t, wrapped.Error(), "email already exists")
	assert.Contains(t, wrapped.Error(), "duplicate key")
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "", GetErrorMessage(nil))
	assert.Equal(t, "user not found", GetErrorMessage(ErrUserNotFound))
	assert.Equal(t, "user not found", GetErrorMessage(WrapError(ErrUserNotFound, errors.New("sql: no rows"))))
	assert.Equal(t, "boom", GetErrorMessage(errors.New("boom")))
}

func TestIsDomainError(t *testing.T) {
	assert.True(t, IsDomainError(ErrInternal))
	assert.True(t, IsDomainError(fmt.Errorf("ctx: %w", ErrInternal)))
	assert.False(t, IsDomainError(errors.New("plain")))
	assert.Nil(t, GetDomainError(errors.New("plain")))
	assert.Equal(t, "INTERNAL_ERROR", GetDomainError(ErrInternal).Code)
}

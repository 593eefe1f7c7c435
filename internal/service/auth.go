package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MaksymY11/mates-backend/internal/dto"
	apperrors "github.com/MaksymY11/mates-backend/internal/errors"
	"github.com/MaksymY11/mates-backend/internal/model"
	ctxutil "github.com/MaksymY11/mates-backend/pkg/context"
	"github.com/MaksymY11/mates-backend/pkg/logger"
)

// AuthService orchestrates registration, login and the refresh-token
// rotation protocol over the user and token stores.
type AuthService struct {
	users      UserStore
	tokens     TokenStore
	hasher     *PasswordHasher
	jwtService *JWTService
	refreshTTL time.Duration
	now        func() time.Time
}

func NewAuthService(users UserStore, tokens TokenStore, hasher *PasswordHasher, jwtService *JWTService, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		hasher:     hasher,
		jwtService: jwtService,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Register creates a new user with a hashed password. A duplicate email is
// reported as ErrEmailExists; the insert itself is the uniqueness check.
func (s *AuthService) Register(ctx context.Context, email, password string) error {
	ctx = ctxutil.WithOperation(ctx, "service", "Register")
	email = strings.TrimSpace(email)

	logger.InfoWithContext(ctx, "Registering user").
		String("email", email).
		Log()

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to hash password").
			String("email", email).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailExists) {
			logger.WarnWithContext(ctx, "Registration rejected: email exists").
				String("email", email).
				Log()
			return apperrors.ErrEmailExists
		}
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("email", email).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User registered").
		String("email", email).
		Int("user_id", int(user.ID)).
		Log()

	return nil
}

// Login verifies credentials and issues an access token plus a persisted
// refresh token. Unknown email and wrong password produce the identical
// error; the distinction exists only in logs.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Login")

	logger.InfoWithContext(ctx, "Login attempt").
		String("email", email).
		Log()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			logger.InfoWithContext(ctx, "Login failed: user not found").
				String("email", email).
				Log()
			return nil, apperrors.ErrInvalidCredentials
		}
		logger.ErrorWithContext(ctx, "Failed to load user for login").
			String("email", email).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		logger.WarnWithContext(ctx, "Login failed: password mismatch").
			String("email", email).
			Log()
		return nil, apperrors.ErrInvalidCredentials
	}

	response, err := s.issueTokens(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "User logged in").
		String("email", email).
		Log()

	return response, nil
}

// Refresh redeems a refresh token exactly once: the presented token row is
// deleted and a replacement is inserted for the same user, alongside a new
// access token. A token that is missing, expired or already consumed by a
// concurrent request fails identically.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*dto.LoginResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Refresh")

	if presented == "" {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	logger.DebugWithContext(ctx, "Refresh attempt").
		Int("token_length", len(presented)).
		Log()

	record, err := s.tokens.Find(ctx, presented)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to look up refresh token").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if record == nil {
		logger.WarnWithContext(ctx, "Refresh failed: unknown token").
			Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}

	if record.Expired(s.now()) {
		// Lazy cleanup: an expired row behaves exactly like a missing one.
		if _, err := s.tokens.Delete(ctx, presented); err != nil {
			logger.WarnWithContext(ctx, "Failed to delete expired refresh token").
				Err(err).
				Log()
		}
		logger.WarnWithContext(ctx, "Refresh failed: token expired").
			String("user_email", record.UserEmail).
			Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}

	deleted, err := s.tokens.Delete(ctx, presented)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to consume refresh token").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if deleted == 0 {
		// A concurrent redemption of the same token won the delete.
		logger.WarnWithContext(ctx, "Refresh failed: token already consumed").
			String("user_email", record.UserEmail).
			Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}

	response, err := s.issueTokens(ctx, record.UserEmail)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "Refresh token rotated").
		String("user_email", record.UserEmail).
		Log()

	return response, nil
}

// Logout revokes the presented refresh token. It is idempotent: revoking a
// missing or already-revoked token still succeeds.
func (s *AuthService) Logout(ctx context.Context, presented string) error {
	ctx = ctxutil.WithOperation(ctx, "service", "Logout")

	if presented == "" {
		return nil
	}

	if _, err := s.tokens.Delete(ctx, presented); err != nil {
		logger.WarnWithContext(ctx, "Failed to delete refresh token on logout").
			Err(err).
			Log()
	}

	logger.InfoWithContext(ctx, "User logged out").
		Log()

	return nil
}

// Authorize validates an access token and returns the email it was issued
// for. Pure signature-and-expiry check, no store access.
func (s *AuthService) Authorize(tokenString string) (string, error) {
	email, err := s.jwtService.ValidateAccessToken(tokenString)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInvalidToken, err)
	}
	return email, nil
}

func (s *AuthService) issueTokens(ctx context.Context, email string) (*dto.LoginResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(email)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to generate access token").
			String("email", email).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken()
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to generate refresh token").
			String("email", email).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	record := &model.RefreshToken{
		Token:     refreshToken,
		UserEmail: email,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.tokens.Insert(ctx, record); err != nil {
		logger.ErrorWithContext(ctx, "Failed to store refresh token").
			String("email", email).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(s.jwtService.AccessTTL().Seconds()),
	}, nil
}

// RefreshTTL returns the configured refresh-token lifetime.
func (s *AuthService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

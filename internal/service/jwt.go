package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService issues and validates HS256 access tokens and generates the
// opaque refresh token values stored server-side.
type JWTService struct {
	secretKey string
	accessTTL time.Duration
	now       func() time.Time
}

func NewJWTService(secretKey string, accessTTL time.Duration) *JWTService {
	return &JWTService{
		secretKey: secretKey,
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// AccessTTL returns the configured access-token lifetime.
func (s *JWTService) AccessTTL() time.Duration {
	return s.accessTTL
}

// GenerateAccessToken creates a short-lived signed token carrying the user's
// email. The token is self-contained: signature plus expiry are the whole
// validation state.
func (s *JWTService) GenerateAccessToken(email string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"email": email,
		"exp":   now.Add(s.accessTTL).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken checks signature and expiry and returns the email
// claim. Every malformed, foreign-signed or expired input comes back as an
// error, never a panic.
func (s *JWTService) ValidateAccessToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.secretKey), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", errors.New("missing email claim")
	}

	return email, nil
}

// GenerateRefreshToken creates a 32-byte cryptographically random value in a
// URL-safe alphabet.
func (s *JWTService) GenerateRefreshToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

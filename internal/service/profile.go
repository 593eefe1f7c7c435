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

// ProfileService reads and updates the mutable profile fields of a user.
type ProfileService struct {
	users UserStore
	cache *ProfileCache
}

func NewProfileService(users UserStore, cache *ProfileCache) *ProfileService {
	return &ProfileService{users: users, cache: cache}
}

// Get returns the profile for the authenticated email. A token whose user
// has since disappeared surfaces as ErrUserNotFound.
func (s *ProfileService) Get(ctx context.Context, email string) (*dto.ProfileResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "GetProfile")

	if s.cache != nil {
		if cached := s.cache.Get(ctx, email); cached != nil {
			logger.DebugWithContext(ctx, "Profile served from cache").
				String("email", email).
				Log()
			return cached, nil
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to load profile").
			String("email", email).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	profile := toProfileResponse(user)
	if s.cache != nil {
		s.cache.Set(ctx, email, profile)
	}

	return profile, nil
}

// Update applies the allow-listed fields from req. Unknown JSON keys never
// reach this point (the DTO drops them); a malformed move_in_date drops that
// single field. When nothing survives filtering the request fails rather
// than issuing an empty write.
func (s *ProfileService) Update(ctx context.Context, email string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdateProfile")

	fields := buildUpdateFields(ctx, req)
	if len(fields) == 0 {
		logger.InfoWithContext(ctx, "Profile update rejected: no valid fields").
			String("email", email).
			Log()
		return nil, apperrors.ErrNoUpdatableFields
	}

	if err := s.users.UpdateProfile(ctx, email, fields); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to update profile").
			String("email", email).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, email)
	}

	logger.InfoWithContext(ctx, "Profile updated").
		String("email", email).
		Int("field_count", len(fields)).
		Log()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return toProfileResponse(user), nil
}

// InvalidateCache drops the cached profile; used by the avatar pipeline
// after it writes the avatar URLs.
func (s *ProfileService) InvalidateCache(ctx context.Context, email string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, email)
	}
}

func buildUpdateFields(ctx context.Context, req *dto.UpdateProfileRequest) map[string]interface{} {
	fields := make(map[string]interface{})

	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Age != nil {
		fields["age"] = *req.Age
	}
	if req.State != nil {
		fields["state"] = strings.TrimSpace(*req.State)
	}
	if req.City != nil {
		fields["city"] = strings.TrimSpace(*req.City)
	}
	if req.Budget != nil {
		fields["budget"] = *req.Budget
	}
	if req.MoveInDate != nil {
		if parsed, ok := parseMoveInDate(*req.MoveInDate); ok {
			fields["move_in_date"] = parsed
		} else {
			logger.DebugWithContext(ctx, "Dropping unparseable move_in_date").
				String("value", *req.MoveInDate).
				Log()
		}
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.Lifestyle != nil {
		fields["lifestyle"] = req.Lifestyle
	}
	if req.Activities != nil {
		fields["activities"] = req.Activities
	}
	if req.Prefs != nil {
		fields["prefs"] = req.Prefs
	}

	return fields
}

func parseMoveInDate(value string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func toProfileResponse(user *model.User) *dto.ProfileResponse {
	return &dto.ProfileResponse{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Age:          user.Age,
		State:        user.State,
		City:         user.City,
		Budget:       user.Budget,
		MoveInDate:   user.MoveInDate,
		Bio:          user.Bio,
		AvatarURL:    user.AvatarURL,
		ThumbnailURL: user.ThumbnailURL,
		Lifestyle:    user.Lifestyle,
		Activities:   user.Activities,
		Prefs:        user.Prefs,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

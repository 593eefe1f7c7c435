package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/MaksymY11/mates-backend/internal/dto"
	"github.com/MaksymY11/mates-backend/pkg/logger"
	"github.com/MaksymY11/mates-backend/pkg/redis"
)

// ProfileCache keeps serialized profile responses in Redis so repeated
// profile reads skip the database. Every cache failure degrades to a miss;
// the cache is never load-bearing.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProfileCache(client *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{client: client, ttl: ttl}
}

func (c *ProfileCache) key(email string) string {
	return "profile:" + email
}

// Get returns the cached profile for email, or nil on a miss.
func (c *ProfileCache) Get(ctx context.Context, email string) *dto.ProfileResponse {
	data, err := c.client.Get(ctx, c.key(email))
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			logger.WarnWithContext(ctx, "Profile cache read failed").
				Err(err).
				Log()
		}
		return nil
	}

	var profile dto.ProfileResponse
	if err := json.Unmarshal(data, &profile); err != nil {
		logger.WarnWithContext(ctx, "Failed to decode cached profile").
			Err(err).
			Log()
		_ = c.client.Delete(ctx, c.key(email))
		return nil
	}

	return &profile
}

// Set stores the profile response under the configured TTL.
func (c *ProfileCache) Set(ctx context.Context, email string, profile *dto.ProfileResponse) {
	data, err := json.Marshal(profile)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to encode profile for cache").
			Err(err).
			Log()
		return
	}

	if err := c.client.Set(ctx, c.key(email), data, c.ttl); err != nil {
		logger.WarnWithContext(ctx, "Profile cache write failed").
			Err(err).
			Log()
	}
}

// Invalidate drops the cached profile after any profile or avatar write.
func (c *ProfileCache) Invalidate(ctx context.Context, email string) {
	if err := c.client.Delete(ctx, c.key(email)); err != nil {
		logger.WarnWithContext(ctx, "Profile cache invalidation failed").
			Err(err).
			Log()
	}
}

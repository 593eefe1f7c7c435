package model

import "time"

// RefreshToken is one live server-side session credential. The opaque token
// value is the primary key; a token row is deleted the moment it is redeemed
// (rotation), revoked (logout) or found expired.
type RefreshToken struct {
	Token     string    `gorm:"column:token;primaryKey"`
	UserEmail string    `gorm:"column:user_email;index;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

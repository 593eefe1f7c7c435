package model

import (
	"time"

	"gorm.io/datatypes"
)

// User is a registered account plus its roommate-search profile. Email is
// the natural key used across the system; PasswordHash never leaves the
// persistence and service layers.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"column:email;unique;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`

	Name         string         `gorm:"column:name"`
	Age          *int           `gorm:"column:age"`
	State        string         `gorm:"column:state"`
	City         string         `gorm:"column:city"`
	Budget       *int           `gorm:"column:budget"`
	MoveInDate   *time.Time     `gorm:"column:move_in_date"`
	Bio          string         `gorm:"column:bio"`
	AvatarURL    string         `gorm:"column:avatar_url"`
	ThumbnailURL string         `gorm:"column:thumbnail_url"`
	Lifestyle    datatypes.JSON `gorm:"column:lifestyle"`
	Activities   datatypes.JSON `gorm:"column:activities"`
	Prefs        datatypes.JSON `gorm:"column:prefs"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

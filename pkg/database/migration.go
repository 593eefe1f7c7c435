package database

import (
	"fmt"

	"github.com/MaksymY11/mates-backend/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for all application tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

package database

import (
	"fmt"

	"gorm.io/gorm"

	"group-board-api/internal/domain"
)

// AutoMigrate runs GORM auto-migration for all domain models.
// Order matters: referenced tables must exist before the foreign keys
// pointing at them are created.
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&domain.User{},
		&domain.Group{},
		&domain.GroupMember{},
		&domain.ColumnBoard{},
		&domain.CardTag{},
		&domain.Card{},
		&domain.UserTag{},
		&domain.UserTagRelation{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}

	return nil
}

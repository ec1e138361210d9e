package main

import (
	"gorm.io/gorm"

	"github.com/maya-ai/engine/internal/models"
)

// registerModels returns all models that need migration
func registerModels() []interface{} {
	return []interface{}{
		// User management
		&models.User{},
		&models.PasswordReset{},

		// Projects and workspace
		&models.Project{},
		&models.Floor{},
		&models.FloorRoom{},
		&models.Interior{},
		&models.InteriorRoom{},
		&models.Exterior{},

		// Conversations
		&models.Chat{},
		&models.ChatMessage{},

		// Packaging and configuration
		&models.Export{},
		&models.Setting{},
	}
}

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	if err := enableUUIDExtension(db); err != nil {
		return err
	}

	if err := db.AutoMigrate(registerModels()...); err != nil {
		return err
	}

	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		addExteriorIndexes,
	}

	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}

	return nil
}

// enableUUIDExtension ensures UUID generation is available
func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error
}

func addExteriorIndexes(db *gorm.DB) error {
	// latest-by-project reads sort on created_at
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_exteriors_project_created
		ON exteriors(project_id, created_at DESC)
		WHERE deleted_at IS NULL
	`).Error
}

package config

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/models"
)

// ConnectDatabase opens the PostgreSQL database at databaseURL
func ConnectDatabase(databaseURL string) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, errors.New("database url is empty")
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	Logger().Info("Database connection established successfully")
	return db, nil
}

// Migrate creates or updates the tables of every model
func Migrate(db *gorm.DB) error {
	all := models.All()
	if err := db.AutoMigrate(all...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	Logger().Debug("Database schema is up to date", zap.Int("models", len(all)))
	return nil
}

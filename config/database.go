package config

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/najoro-git/CyberApp-manager/models"
)

// ConnectDB opens the SQLite database file and runs the schema migration.
// The handle is returned, not stored globally, so every consumer gets it
// injected and tests can open an isolated throwaway file.
func ConnectDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema and the invariant-bearing indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Station{},
		&models.Client{},
		&models.Service{},
		&models.Session{},
		&models.SessionService{},
		&models.User{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	// At most one active session per station, enforced by the store rather
	// than by a read-then-write check in the handler.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active_per_station
		   ON sessions(station_id) WHERE status = 'active'`,
	).Error; err != nil {
		return fmt.Errorf("create active-session index: %w", err)
	}

	return nil
}

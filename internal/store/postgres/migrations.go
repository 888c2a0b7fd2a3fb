package postgres

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gravadigital/partyshare-api/internal/logger"
)

// RunMigrations creates or updates the records schema.
func RunMigrations(db *gorm.DB) error {
	log := logger.Migration()
	log.Info("Starting database migrations...")

	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if err := HealthCheck(db); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	startTime := time.Now()

	if err := db.AutoMigrate(&recordRow{}); err != nil {
		return fmt.Errorf("failed to migrate records table: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_records_collection ON records (collection)").Error; err != nil {
		return fmt.Errorf("failed to create collection index: %w", err)
	}

	log.Info("Database migrations completed successfully", "duration", time.Since(startTime))
	return nil
}

// RollbackMigration drops the records schema.
func RollbackMigration(db *gorm.DB) error {
	log := logger.Migration()
	log.Warn("Rolling back records schema")

	if err := db.Migrator().DropTable(&recordRow{}); err != nil {
		return fmt.Errorf("failed to drop records table: %w", err)
	}
	return nil
}

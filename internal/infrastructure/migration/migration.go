// Package migration runs goose SQL migrations against the primary database.
package migration

import (
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
)

// Runner applies goose SQL migrations from a scripts directory.
type Runner struct {
	scriptsPath string
	logger      logger.Interface
}

func NewRunner(scriptsPath string) *Runner {
	return &Runner{
		scriptsPath: scriptsPath,
		logger:      logger.NewLogger().With("component", "migration"),
	}
}

// Up applies all pending migrations.
func (r *Runner) Up(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	currentVersion, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	if err := goose.Up(sqlDB, r.scriptsPath); err != nil {
		r.logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	finalVersion, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to get final version: %w", err)
	}

	r.logger.Infow("migration completed",
		"from_version", currentVersion,
		"to_version", finalVersion,
	)
	return nil
}

// Down rolls back the most recent migration.
func (r *Runner) Down(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Down(sqlDB, r.scriptsPath); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	return nil
}

// Status prints the migration status.
func (r *Runner) Status(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Status(sqlDB, r.scriptsPath); err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	return nil
}

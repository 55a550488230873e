package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gastrolink/mesa-api/internal/config"
	"github.com/gastrolink/mesa-api/internal/domain/entity"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		// Tenancy
		&entity.Establishment{},
		&entity.User{},

		// Order aggregate
		&entity.Order{},
		&entity.OrderItem{},

		// Reconciliation
		&entity.Division{},
		&entity.CashShift{},
		&entity.CashMovement{},
		&entity.Invoice{},
		&entity.InvoiceApplication{},

		// System
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// One open shift per (establishment, cashier). Races on OpenShift hit
	// this index and fail instead of both succeeding.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uniq_open_shift
		ON cash_shifts (establishment_id, cashier_id)
		WHERE state = 0`).Error
	if err != nil {
		return fmt.Errorf("failed to create open-shift index: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

package infra

import (
	"fmt"
	"strings"

	"bizledger/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection and runs AutoMigrate for the
// full schema. A postgres:// DSN selects the pgx-backed driver; anything
// else is treated as a sqlite file path, which keeps local development and
// integration tests free of external services.
func NewDatabase(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// RunMigrations creates or updates every table. Also used by integration
// tests against a throwaway sqlite database.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Account{},
		&model.Transaction{},
		&model.Product{},
		&model.StockMovement{},
		&model.Customer{},
		&model.CreditTransaction{},
		&model.Sale{},
		&model.SaleItem{},
		&model.Return{},
		&model.ReturnItem{},
		&model.AuditLog{},
	)
}

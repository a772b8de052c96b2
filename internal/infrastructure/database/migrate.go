package database

import (
	"fmt"

	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/pkg/logger"
	"gorm.io/gorm"
)

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	logger.Get().Info("running database migrations")

	err := db.AutoMigrate(
		&entity.Permission{},
		&entity.Role{},
		&entity.User{},

		&entity.Product{},
		&entity.Customer{},
		&entity.Supplier{},
		&entity.Promotion{},

		&entity.Invoice{},
		&entity.InvoiceItem{},
		&entity.Shipment{},
		&entity.StockIn{},
		&entity.StockInItem{},

		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Get().Info("database migrations completed")
	return nil
}

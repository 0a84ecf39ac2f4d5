package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item. Stock is derived state: the running sum of
// signed stock movements since creation. It is mutated only through the
// inventory service, which locks the row and appends one StockMovement
// per change.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU         string    `gorm:"uniqueIndex;not null"`
	Name        string    `gorm:"index;not null"`
	Description *string
	Category    string          `gorm:"not null"`
	Cost        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	ReorderLevel int            `gorm:"not null;default:5"`
	// LowStock is recomputed on every stock mutation: stock <= reorder_level.
	LowStock  bool `gorm:"not null;default:false;index"`
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// StockMovement records one stock mutation on a product.
// Reason: "sale" | "return" | "restock" | "adjustment" | "void_restore"
// Movements are append-only; product stock can be audited and rebuilt
// by replaying them.
type StockMovement struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Change        int       `gorm:"not null"` // positive = in, negative = out
	PreviousStock int       `gorm:"not null"`
	NewStock      int       `gorm:"not null"`
	Reason        string    `gorm:"not null"`
	// ReferenceID links to the sale, return, or adjustment that caused it.
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

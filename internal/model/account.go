package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a financial account whose balance is derived state:
// it must always equal the opening balance plus the signed sum of all
// transaction movements referencing it. Balances are mutated exclusively
// through the ledger service — never written directly by handlers.
// Type: "asset" | "liability" | "equity"
type Account struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name    string          `gorm:"uniqueIndex;not null"`
	Type    string          `gorm:"type:varchar(20);not null;default:'asset'"`
	Balance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Currency string         `gorm:"type:varchar(3);not null;default:'USD'"`
	// PaymentMethod marks this account as the settlement account for a
	// checkout payment method: "cash" | "card" | "mobile" | "credit"
	PaymentMethod *string `gorm:"type:varchar(20);index"`
	IsDefault     bool    `gorm:"not null;default:false"`
	Active        bool    `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

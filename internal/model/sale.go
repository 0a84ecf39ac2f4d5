package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Checkout payment methods.
const (
	PayCash   = "cash"
	PayCard   = "card"
	PayMobile = "mobile"
	PayCredit = "credit"
)

// Sale states.
const (
	SaleCompleted = "completed"
	SaleVoided    = "voided"
)

// Sale is created once by checkout and never mutated afterwards except
// for its status (void) and by linked returns.
type Sale struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number     int       `gorm:"uniqueIndex;not null"`
	CashierID  uuid.UUID `gorm:"type:uuid;not null"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Tax        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string       `gorm:"type:varchar(20);not null"`
	Status        string       `gorm:"type:varchar(20);not null;default:'completed'"`
	// TransactionID points to the income transaction recorded at checkout.
	TransactionID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time  `gorm:"index"`

	Items    []SaleItem `gorm:"foreignKey:SaleID"`
	Customer *Customer  `gorm:"foreignKey:CustomerID"`
	Cashier  *User      `gorm:"foreignKey:CashierID"`
}

// SaleItem snapshots product name and price at sale time, so later price
// changes never alter recorded sales or refund amounts.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity  int             `gorm:"not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Credit adjustment kinds.
const (
	CreditIncrease = "increase"
	CreditDecrease = "decrease"
	CreditPayment  = "payment"
)

// CreditTransaction is the audit row appended on every customer credit
// mutation, capturing the balance before and after. Append-only.
type CreditTransaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind          string          `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// ReferenceID links to the sale that took the credit, if any.
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time

	Customer *Customer `gorm:"foreignKey:CustomerID"`
}

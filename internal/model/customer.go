package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer carries credit state and purchase statistics.
// OutstandingBalance is the store credit currently used; it never goes
// below zero and, when CreditLimit is positive, never above the limit.
// CreditLimit zero means unlimited.
type Customer struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name  string    `gorm:"index;not null"`
	Email *string   `gorm:"index"`
	Phone *string
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreditLimit        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalPurchases     int             `gorm:"not null;default:0"`
	TotalSpent         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	FirstPurchaseAt    *time.Time
	LastPurchaseAt     *time.Time
	Active             bool `gorm:"not null;default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AvailableCredit returns how much more credit the customer may take.
// A zero limit means unlimited; callers must check Unlimited first.
func (c *Customer) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.OutstandingBalance)
}

// UnlimitedCredit reports whether the customer has no credit ceiling.
func (c *Customer) UnlimitedCredit() bool {
	return c.CreditLimit.IsZero()
}

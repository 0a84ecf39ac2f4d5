package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TxIncome   = "income"
	TxExpense  = "expense"
	TxTransfer = "transfer"
)

// Transaction is one immutable entry in the movement log. Rows are
// append-only: corrections are recorded as new compensating entries,
// never as updates or deletes.
type Transaction struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Type string    `gorm:"type:varchar(20);not null;index"`
	// Amount is always positive; Type carries the sign of the movement.
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	// ToAccountID is set for transfers only.
	ToAccountID *uuid.UUID `gorm:"type:uuid;index"`
	Category    string     `gorm:"not null;index"`
	Description *string
	// ReferenceID links to the originating sale or return, if any.
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	Status      string     `gorm:"type:varchar(20);not null;default:'completed'"`
	CreatedAt   time.Time  `gorm:"index"`

	Account   *Account `gorm:"foreignKey:AccountID"`
	ToAccount *Account `gorm:"foreignKey:ToAccountID"`
}

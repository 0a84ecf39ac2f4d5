package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Return links returned sale lines to the compensating refund transaction.
type Return struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	RefundAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// RefundTransactionID points to the expense transaction for the refund.
	RefundTransactionID uuid.UUID `gorm:"type:uuid;not null"`
	Reason              *string
	CreatedAt           time.Time

	Items []ReturnItem `gorm:"foreignKey:ReturnID"`
	Sale  *Sale        `gorm:"foreignKey:SaleID"`
}

// ReturnItem is one returned line, priced from the original sale line.
type ReturnItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReturnID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Domain error taxonomy. Handlers map these onto HTTP statuses; nothing
// below ever carries driver or SQL detail.
var (
	ErrValidation               = errors.New("validation failed")
	ErrNotFound                 = errors.New("not found")
	ErrEmptyCart                = errors.New("cart is empty")
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
	ErrOverReturn               = errors.New("returned quantity exceeds remaining returnable quantity")
)

// InsufficientStockError is returned when a stock adjustment would drive
// stock below zero. Stock is left untouched.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// CreditLimitExceededError is returned when a credit increase would push
// the outstanding balance above a positive credit limit.
type CreditLimitExceededError struct {
	CustomerID uuid.UUID
	Limit      decimal.Decimal
	Attempted  decimal.Decimal
}

func (e *CreditLimitExceededError) Error() string {
	return fmt.Sprintf("credit limit exceeded for customer %s: limit %s, attempted balance %s",
		e.CustomerID, e.Limit.StringFixed(2), e.Attempted.StringFixed(2))
}

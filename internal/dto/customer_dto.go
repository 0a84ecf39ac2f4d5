package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCustomerRequest struct {
	Name        string          `json:"name"         validate:"required,min=2,max=120"`
	Email       *string         `json:"email"        validate:"omitempty,email"`
	Phone       *string         `json:"phone"`
	CreditLimit decimal.Decimal `json:"credit_limit" validate:"min=0"`
}

type UpdateCustomerRequest struct {
	Name        *string          `json:"name"         validate:"omitempty,min=2,max=120"`
	Email       *string          `json:"email"        validate:"omitempty,email"`
	Phone       *string          `json:"phone"`
	CreditLimit *decimal.Decimal `json:"credit_limit"`
}

// AdjustCreditRequest feeds the customer credit adjuster.
// Kind: increase grows the outstanding balance; decrease and payment
// shrink it, clamped at zero.
type AdjustCreditRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Kind   string          `json:"kind"   validate:"required,oneof=increase decrease payment"`
}

type CustomerFilter struct {
	Name  string `form:"name"`
	Email string `form:"email"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CustomerResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Email              *string         `json:"email"`
	Phone              *string         `json:"phone"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	CreditLimit        decimal.Decimal `json:"credit_limit"`
	TotalPurchases     int             `json:"total_purchases"`
	TotalSpent         decimal.Decimal `json:"total_spent"`
	LastPurchaseAt     *string         `json:"last_purchase_at,omitempty"`
}

type CustomerListResponse struct {
	Data  []CustomerResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type CreditAdjustmentResponse struct {
	CustomerID    string          `json:"customer_id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}

type CreditTransactionResponse struct {
	ID            string          `json:"id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	CreatedAt     string          `json:"created_at"`
}

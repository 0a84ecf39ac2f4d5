package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateAccountRequest struct {
	Name     string          `json:"name"     validate:"required,min=2,max=80"`
	Type     string          `json:"type"     validate:"required,oneof=asset liability equity"`
	Currency string          `json:"currency" validate:"omitempty,len=3"`
	// OpeningBalance seeds the account; later mutations go through the ledger.
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"min=0"`
	PaymentMethod  *string         `json:"payment_method"  validate:"omitempty,oneof=cash card mobile credit"`
	IsDefault      bool            `json:"is_default"`
}

type UpdateAccountRequest struct {
	Name          *string `json:"name"           validate:"omitempty,min=2,max=80"`
	PaymentMethod *string `json:"payment_method" validate:"omitempty,oneof=cash card mobile credit"`
	IsDefault     *bool   `json:"is_default"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AccountResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	PaymentMethod *string         `json:"payment_method"`
	IsDefault     bool            `json:"is_default"`
}

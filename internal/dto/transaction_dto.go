package dto

import "github.com/shopspring/decimal"

// RecordTransactionRequest is the input to the transaction recorder.
// ToAccountID is required for transfers and rejected otherwise.
type RecordTransactionRequest struct {
	Type        string          `json:"type"          validate:"required,oneof=income expense transfer"`
	Amount      decimal.Decimal `json:"amount"        validate:"required"`
	AccountID   string          `json:"account_id"    validate:"required,uuid"`
	ToAccountID *string         `json:"to_account_id" validate:"omitempty,uuid"`
	Category    string          `json:"category"      validate:"required,min=2,max=80"`
	Description *string         `json:"description"`
}

// TransactionFilter is bound from the query string of GET /v1/transactions.
type TransactionFilter struct {
	Type      string `form:"type"       validate:"omitempty,oneof=income expense transfer"`
	AccountID string `form:"account_id" validate:"omitempty,uuid"`
	Category  string `form:"category"`
	From      string `form:"from"` // YYYY-MM-DD
	To        string `form:"to"`   // YYYY-MM-DD, exclusive
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type TransactionResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	AccountID   string          `json:"account_id"`
	ToAccountID *string         `json:"to_account_id,omitempty"`
	Category    string          `json:"category"`
	Description *string         `json:"description,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"created_at"`
}

type TransactionListResponse struct {
	Data  []TransactionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

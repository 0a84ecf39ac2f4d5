package dto

import "github.com/shopspring/decimal"

type ReturnItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type ProcessReturnRequest struct {
	SaleID string              `json:"sale_id" validate:"required,uuid"`
	Items  []ReturnItemRequest `json:"items"   validate:"required,min=1,dive"`
	Reason *string             `json:"reason"`
}

type ReturnItemResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

type ReturnResponse struct {
	ID                  string               `json:"id"`
	SaleID              string               `json:"sale_id"`
	Items               []ReturnItemResponse `json:"items"`
	RefundAmount        decimal.Decimal      `json:"refund_amount"`
	RefundTransactionID string               `json:"refund_transaction_id"`
	CreatedAt           string               `json:"created_at"`
}

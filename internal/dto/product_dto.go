package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	SKU          string          `json:"sku"           validate:"required,min=3,max=40"`
	Name         string          `json:"name"          validate:"required,min=2,max=120"`
	Description  *string         `json:"description"`
	Category     string          `json:"category"      validate:"required"`
	Cost         decimal.Decimal `json:"cost"          validate:"required"`
	Price        decimal.Decimal `json:"price"         validate:"required"`
	Stock        int             `json:"stock"         validate:"min=0"`
	ReorderLevel int             `json:"reorder_level" validate:"min=0"`
}

type UpdateProductRequest struct {
	Name         *string          `json:"name"          validate:"omitempty,min=2,max=120"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category"`
	Cost         *decimal.Decimal `json:"cost"`
	Price        *decimal.Decimal `json:"price"`
	ReorderLevel *int             `json:"reorder_level" validate:"omitempty,min=0"`
}

// AdjustStockRequest feeds the stock adjuster. Change may be negative
// (shrinkage, damage) or positive (restock); zero is rejected.
type AdjustStockRequest struct {
	Change int    `json:"change" validate:"required"`
	Reason string `json:"reason" validate:"required,oneof=restock adjustment damage"`
	Note   string `json:"note"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	SKU      string `form:"sku"`
	Name     string `form:"name"`
	Category string `form:"category"`
	LowStock bool   `form:"low_stock"`
	Active   string `form:"active"` // "false" | "all" | default active
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	Category     string          `json:"category"`
	Cost         decimal.Decimal `json:"cost"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	ReorderLevel int             `json:"reorder_level"`
	LowStock     bool            `json:"low_stock"`
	Active       bool            `json:"active"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// StockAdjustmentResponse reports the applied delta and both stock levels,
// mirroring the movement row it appended.
type StockAdjustmentResponse struct {
	ProductID     string `json:"product_id"`
	Change        int    `json:"change"`
	PreviousStock int    `json:"previous_stock"`
	NewStock      int    `json:"new_stock"`
	LowStock      bool   `json:"low_stock"`
}

type StockMovementResponse struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"product_id"`
	Product       string  `json:"product,omitempty"`
	Change        int     `json:"change"`
	PreviousStock int     `json:"previous_stock"`
	NewStock      int     `json:"new_stock"`
	Reason        string  `json:"reason"`
	ReferenceID   *string `json:"reference_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

package service

import (
	"context"
	"errors"
	"fmt"

	"bizledger/internal/dto"
	"bizledger/internal/model"
	"bizledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryService owns product stock. Every mutation locks the product
// row, applies the delta, recomputes the low-stock flag, and appends one
// StockMovement — all inside a single transaction.
type InventoryService interface {
	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	ListProducts(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	DeactivateProduct(ctx context.Context, id uuid.UUID) error
	ReactivateProduct(ctx context.Context, id uuid.UUID) error

	AdjustStock(ctx context.Context, actorID *uuid.UUID, productID uuid.UUID, req dto.AdjustStockRequest) (*dto.StockAdjustmentResponse, error)
	ListMovements(ctx context.Context, filter repository.StockMovementFilter) (*dto.StockMovementListResponse, error)
	LowStockAlerts(ctx context.Context) ([]dto.ProductResponse, error)

	// AdjustStockTx applies a stock delta inside an already-open
	// transaction. Checkout, returns and voids compose on it.
	AdjustStockTx(tx *gorm.DB, productID uuid.UUID, change int, reason string, referenceID *uuid.UUID) (*dto.StockAdjustmentResponse, error)
}

type inventoryService struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	auditLogs repository.AuditLogRepository
}

func NewInventoryService(
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	auditLogs repository.AuditLogRepository,
) InventoryService {
	return &inventoryService{
		products:  products,
		movements: movements,
		auditLogs: auditLogs,
	}
}

// ── Product CRUD ─────────────────────────────────────────────────────────────

func (s *inventoryService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.Price.IsNegative() || req.Cost.IsNegative() {
		return nil, fmt.Errorf("%w: cost and price must not be negative", ErrValidation)
	}
	p := &model.Product{
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Cost:         req.Cost,
		Price:        req.Price,
		Stock:        req.Stock,
		ReorderLevel: req.ReorderLevel,
		LowStock:     req.Stock <= req.ReorderLevel,
		Active:       true,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return productToResponse(p), nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return productToResponse(p), nil
}

func (s *inventoryService) ListProducts(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Cost != nil {
		if req.Cost.IsNegative() {
			return nil, fmt.Errorf("%w: cost must not be negative", ErrValidation)
		}
		p.Cost = *req.Cost
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
		}
		p.Price = *req.Price
	}
	if req.ReorderLevel != nil {
		p.ReorderLevel = *req.ReorderLevel
		p.LowStock = p.Stock <= p.ReorderLevel
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return productToResponse(p), nil
}

func (s *inventoryService) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return s.products.SoftDelete(ctx, id)
}

func (s *inventoryService) ReactivateProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return s.products.Reactivate(ctx, id)
}

// ── Stock adjuster ───────────────────────────────────────────────────────────

func (s *inventoryService) AdjustStock(ctx context.Context, actorID *uuid.UUID, productID uuid.UUID, req dto.AdjustStockRequest) (*dto.StockAdjustmentResponse, error) {
	if req.Change == 0 {
		return nil, fmt.Errorf("%w: change must not be zero", ErrValidation)
	}
	// Map the manual "damage" reason onto the generic adjustment reason;
	// the note carries the detail.
	reason := req.Reason
	if reason == "damage" {
		reason = "adjustment"
	}

	var result *dto.StockAdjustmentResponse
	err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.AdjustStockTx(tx, productID, req.Change, reason, nil)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	audit(ctx, s.auditLogs, actorID, "stock.adjust", "product", &productID,
		fmt.Sprintf("%+d (%s) %d -> %d: %s", req.Change, req.Reason, result.PreviousStock, result.NewStock, req.Note))
	return result, nil
}

func (s *inventoryService) AdjustStockTx(tx *gorm.DB, productID uuid.UUID, change int, reason string, referenceID *uuid.UUID) (*dto.StockAdjustmentResponse, error) {
	p, err := s.products.LockByIDTx(tx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
		}
		return nil, err
	}

	newStock := p.Stock + change
	if newStock < 0 {
		return nil, &InsufficientStockError{
			ProductID: productID,
			Requested: -change,
			Available: p.Stock,
		}
	}
	lowStock := newStock <= p.ReorderLevel

	if err := s.products.UpdateStockTx(tx, productID, newStock, lowStock); err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}
	movement := &model.StockMovement{
		ProductID:     productID,
		Change:        change,
		PreviousStock: p.Stock,
		NewStock:      newStock,
		Reason:        reason,
		ReferenceID:   referenceID,
	}
	if err := s.movements.CreateTx(tx, movement); err != nil {
		return nil, fmt.Errorf("append stock movement: %w", err)
	}

	return &dto.StockAdjustmentResponse{
		ProductID:     productID.String(),
		Change:        change,
		PreviousStock: p.Stock,
		NewStock:      newStock,
		LowStock:      lowStock,
	}, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, filter repository.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	movements, total, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(movements))
	for i := range movements {
		m := &movements[i]
		resp := dto.StockMovementResponse{
			ID:            m.ID.String(),
			ProductID:     m.ProductID.String(),
			Change:        m.Change,
			PreviousStock: m.PreviousStock,
			NewStock:      m.NewStock,
			Reason:        m.Reason,
			CreatedAt:     m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if m.Product != nil {
			resp.Product = m.Product.Name
		}
		if m.ReferenceID != nil {
			ref := m.ReferenceID.String()
			resp.ReferenceID = &ref
		}
		items = append(items, resp)
	}
	return &dto.StockMovementListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *inventoryService) LowStockAlerts(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.products.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return items, nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID.String(),
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		Cost:         p.Cost,
		Price:        p.Price,
		Stock:        p.Stock,
		ReorderLevel: p.ReorderLevel,
		LowStock:     p.LowStock,
		Active:       p.Active,
	}
}

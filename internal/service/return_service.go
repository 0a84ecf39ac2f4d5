package service

import (
	"context"
	"errors"
	"fmt"

	"bizledger/internal/dto"
	"bizledger/internal/model"
	"bizledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReturnService processes returns against completed sales. A return
// refunds at the original sale-line price, restocks the returned units
// and unwinds credit for credit sales — all in one transaction.
type ReturnService interface {
	ProcessReturn(ctx context.Context, actorID *uuid.UUID, req dto.ProcessReturnRequest) (*dto.ReturnResponse, error)
	GetReturn(ctx context.Context, id uuid.UUID) (*dto.ReturnResponse, error)
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]dto.ReturnResponse, error)
}

type returnService struct {
	returns   repository.ReturnRepository
	sales     repository.SaleRepository
	accounts  repository.AccountRepository
	auditLogs repository.AuditLogRepository
	ledger    LedgerService
	inventory InventoryService
	customers CustomerService
}

func NewReturnService(
	returns repository.ReturnRepository,
	sales repository.SaleRepository,
	accounts repository.AccountRepository,
	auditLogs repository.AuditLogRepository,
	ledger LedgerService,
	inventory InventoryService,
	customers CustomerService,
) ReturnService {
	return &returnService{
		returns:   returns,
		sales:     sales,
		accounts:  accounts,
		auditLogs: auditLogs,
		ledger:    ledger,
		inventory: inventory,
		customers: customers,
	}
}

func (s *returnService) ProcessReturn(ctx context.Context, actorID *uuid.UUID, req dto.ProcessReturnRequest) (*dto.ReturnResponse, error) {
	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid sale_id", ErrValidation)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: no items to return", ErrValidation)
	}

	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sale %s", ErrNotFound, saleID)
		}
		return nil, err
	}
	if sale.Status == model.SaleVoided {
		return nil, fmt.Errorf("%w: cannot return against a voided sale", ErrValidation)
	}

	// Sale items never change after checkout, so the pre-flight read is
	// enough for pricing and membership checks.
	sold := make(map[uuid.UUID]*model.SaleItem, len(sale.Items))
	for i := range sale.Items {
		sold[sale.Items[i].ProductID] = &sale.Items[i]
	}
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid product_id %q", ErrValidation, item.ProductID)
		}
		if _, inSale := sold[productID]; !inSale {
			return nil, fmt.Errorf("%w: product %s was not part of sale %s", ErrValidation, productID, saleID)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
	}

	settlement, err := s.accounts.FindByPaymentMethod(ctx, sale.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: no settlement account for payment method %q", ErrUnsupportedPaymentMethod, sale.PaymentMethod)
	}

	var refund decimal.Decimal
	ret := &model.Return{
		SaleID: saleID,
		Reason: req.Reason,
	}
	txErr := runTx(ctx, s.accounts.DB(), func(tx *gorm.DB) error {
		// Lock the sale row and fold prior returns while holding it, so a
		// concurrent return or void of the same sale cannot pass the guard
		// in parallel.
		locked, err := s.sales.LockByIDTx(tx, saleID)
		if err != nil {
			return err
		}
		if locked.Status == model.SaleVoided {
			return fmt.Errorf("%w: cannot return against a voided sale", ErrValidation)
		}

		remaining := make(map[uuid.UUID]int, len(sale.Items))
		for i := range sale.Items {
			remaining[sale.Items[i].ProductID] += sale.Items[i].Quantity
		}
		prior, err := s.returns.ListBySaleTx(tx, saleID)
		if err != nil {
			return err
		}
		for i := range prior {
			for j := range prior[i].Items {
				remaining[prior[i].Items[j].ProductID] -= prior[i].Items[j].Quantity
			}
		}

		refund = decimal.Zero
		ret.Items = make([]model.ReturnItem, 0, len(req.Items))
		for _, item := range req.Items {
			productID := mustUUID(item.ProductID)
			if item.Quantity > remaining[productID] {
				return fmt.Errorf("%w: product %s, requested %d, returnable %d",
					ErrOverReturn, productID, item.Quantity, remaining[productID])
			}
			remaining[productID] -= item.Quantity

			amount := sold[productID].Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			refund = refund.Add(amount)
			ret.Items = append(ret.Items, model.ReturnItem{
				ProductID: productID,
				Quantity:  item.Quantity,
				Amount:    amount,
			})
		}
		// Exclusive-tax sales record line totals net of tax; scale those
		// refunds so the tax charged on top comes back too. Inclusive
		// sales already carry the tax in the line price.
		if !sale.Tax.IsZero() && sale.Subtotal.IsPositive() && linePricesAreNet(sale) {
			refund = refund.Mul(sale.Total).Div(sale.Subtotal).Round(2)
		}
		ret.RefundAmount = refund

		desc := fmt.Sprintf("Refund for sale #%d", sale.Number)
		movement := &model.Transaction{
			Type:        model.TxExpense,
			Amount:      refund,
			AccountID:   settlement.ID,
			Category:    "refunds",
			Description: &desc,
			ReferenceID: &saleID,
			Status:      "completed",
		}
		if err := s.ledger.RecordTransactionTx(tx, movement); err != nil {
			return err
		}
		ret.RefundTransactionID = movement.ID

		if err := s.returns.CreateTx(tx, ret); err != nil {
			return fmt.Errorf("create return: %w", err)
		}

		for i := range ret.Items {
			item := &ret.Items[i]
			if _, err := s.inventory.AdjustStockTx(tx, item.ProductID, item.Quantity, "return", &ret.ID); err != nil {
				return err
			}
		}

		if sale.PaymentMethod == model.PayCredit && sale.CustomerID != nil {
			if _, err := s.customers.AdjustCreditTx(tx, *sale.CustomerID, model.CreditDecrease, refund, &ret.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	audit(ctx, s.auditLogs, actorID, "sale.return", "return", &ret.ID,
		fmt.Sprintf("sale #%d refund %s", sale.Number, refund.StringFixed(2)))
	return returnToResponse(ret), nil
}

func (s *returnService) GetReturn(ctx context.Context, id uuid.UUID) (*dto.ReturnResponse, error) {
	ret, err := s.returns.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: return %s", ErrNotFound, id)
		}
		return nil, err
	}
	return returnToResponse(ret), nil
}

func (s *returnService) ListBySale(ctx context.Context, saleID uuid.UUID) ([]dto.ReturnResponse, error) {
	rets, err := s.returns.ListBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReturnResponse, 0, len(rets))
	for i := range rets {
		items = append(items, *returnToResponse(&rets[i]))
	}
	return items, nil
}

// linePricesAreNet reports whether the sale's line totals were recorded
// before tax. Exclusive-tax sales sum to the subtotal, inclusive ones to
// the total.
func linePricesAreNet(sale *model.Sale) bool {
	sum := decimal.Zero
	for i := range sale.Items {
		sum = sum.Add(sale.Items[i].LineTotal)
	}
	return sum.Equal(sale.Subtotal)
}

// mustUUID re-parses an id that pre-flight validation already accepted.
func mustUUID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}

func returnToResponse(ret *model.Return) *dto.ReturnResponse {
	resp := &dto.ReturnResponse{
		ID:                  ret.ID.String(),
		SaleID:              ret.SaleID.String(),
		RefundAmount:        ret.RefundAmount,
		RefundTransactionID: ret.RefundTransactionID.String(),
		CreatedAt:           ret.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Items:               make([]dto.ReturnItemResponse, 0, len(ret.Items)),
	}
	for i := range ret.Items {
		item := &ret.Items[i]
		resp.Items = append(resp.Items, dto.ReturnItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Amount:    item.Amount,
		})
	}
	return resp
}

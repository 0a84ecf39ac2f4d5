package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bizledger/internal/dto"
	"bizledger/internal/model"
	"bizledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReceiptQueue enqueues post-sale receipt generation. Checkout treats it
// as best effort; a full queue never fails a committed sale.
type ReceiptQueue interface {
	EnqueueReceipt(ctx context.Context, saleID uuid.UUID, email *string) error
}

// TaxPolicy is the store-wide tax configuration applied at checkout.
type TaxPolicy struct {
	// RatePct is the tax rate in percent, e.g. 16 for 16%.
	RatePct decimal.Decimal
	// Inclusive: item prices already contain tax; the tax portion is
	// carved out of the gross instead of added on top.
	Inclusive bool
}

// SaleService runs the two compound workflows: checkout and void.
// Each commits as a single database transaction covering the sale rows,
// the ledger movement, stock deltas and credit effects.
type SaleService interface {
	Checkout(ctx context.Context, cashierID uuid.UUID, req dto.CheckoutRequest) (*dto.SaleResponse, error)
	VoidSale(ctx context.Context, actorID *uuid.UUID, saleID uuid.UUID, req dto.VoidSaleRequest) (*dto.SaleResponse, error)
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	sales     repository.SaleRepository
	products  repository.ProductRepository
	accounts  repository.AccountRepository
	txns      repository.TransactionRepository
	returns   repository.ReturnRepository
	auditLogs repository.AuditLogRepository
	ledger    LedgerService
	inventory InventoryService
	customers CustomerService
	custRepo  repository.CustomerRepository
	receipts  ReceiptQueue
	tax       TaxPolicy
	now       func() time.Time
}

func NewSaleService(
	sales repository.SaleRepository,
	products repository.ProductRepository,
	accounts repository.AccountRepository,
	txns repository.TransactionRepository,
	returns repository.ReturnRepository,
	auditLogs repository.AuditLogRepository,
	ledger LedgerService,
	inventory InventoryService,
	customers CustomerService,
	custRepo repository.CustomerRepository,
	receipts ReceiptQueue,
	tax TaxPolicy,
) SaleService {
	return &saleService{
		sales:     sales,
		products:  products,
		accounts:  accounts,
		txns:      txns,
		returns:   returns,
		auditLogs: auditLogs,
		ledger:    ledger,
		inventory: inventory,
		customers: customers,
		custRepo:  custRepo,
		receipts:  receipts,
		tax:       tax,
		now:       time.Now,
	}
}

// ── Checkout ─────────────────────────────────────────────────────────────────

type pricedLine struct {
	product  *model.Product
	quantity int
	total    decimal.Decimal
}

func (s *saleService) Checkout(ctx context.Context, cashierID uuid.UUID, req dto.CheckoutRequest) (*dto.SaleResponse, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	switch req.PaymentMethod {
	case model.PayCash, model.PayCard, model.PayMobile, model.PayCredit:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPaymentMethod, req.PaymentMethod)
	}

	// Pre-flight: resolve and price every line outside the write
	// transaction. Stock is re-checked under the row lock inside.
	lines := make([]pricedLine, 0, len(req.Items))
	seen := make(map[uuid.UUID]int, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid product_id %q", ErrValidation, item.ProductID)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
		if idx, dup := seen[productID]; dup {
			// Merge duplicate lines so the row lock is taken once.
			lines[idx].quantity += item.Quantity
			lines[idx].total = lines[idx].product.Price.Mul(decimal.NewFromInt(int64(lines[idx].quantity)))
			continue
		}
		p, err := s.products.FindByID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
		}
		if !p.Active {
			return nil, fmt.Errorf("%w: product %s is inactive", ErrValidation, productID)
		}
		if p.Stock < item.Quantity {
			return nil, &InsufficientStockError{ProductID: productID, Requested: item.Quantity, Available: p.Stock}
		}
		seen[productID] = len(lines)
		lines = append(lines, pricedLine{
			product:  p,
			quantity: item.Quantity,
			total:    p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}

	gross := decimal.Zero
	for _, l := range lines {
		gross = gross.Add(l.total)
	}
	subtotal, tax, total := s.computeTax(gross)

	var customerID *uuid.UUID
	if req.CustomerID != nil {
		id, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid customer_id", ErrValidation)
		}
		customerID = &id
	}

	if req.PaymentMethod == model.PayCredit {
		if customerID == nil {
			return nil, fmt.Errorf("%w: credit sales require a customer", ErrValidation)
		}
		// Pre-flight limit check on the committed balance. Re-evaluated
		// under the row lock inside the transaction.
		c, err := s.custRepo.FindByID(ctx, *customerID)
		if err != nil {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, *customerID)
		}
		if !c.UnlimitedCredit() && c.OutstandingBalance.Add(total).GreaterThan(c.CreditLimit) {
			return nil, &CreditLimitExceededError{
				CustomerID: *customerID,
				Limit:      c.CreditLimit,
				Attempted:  c.OutstandingBalance.Add(total),
			}
		}
	}

	settlement, err := s.accounts.FindByPaymentMethod(ctx, req.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: no settlement account for payment method %q", ErrUnsupportedPaymentMethod, req.PaymentMethod)
	}

	now := s.now()
	sale := &model.Sale{
		CashierID:     cashierID,
		CustomerID:    customerID,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         total,
		PaymentMethod: req.PaymentMethod,
		Status:        model.SaleCompleted,
	}

	txErr := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		number, err := s.sales.NextNumberTx(tx)
		if err != nil {
			return fmt.Errorf("allocate sale number: %w", err)
		}
		sale.Number = number

		sale.Items = make([]model.SaleItem, 0, len(lines))
		for _, l := range lines {
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID: l.product.ID,
				Name:      l.product.Name,
				Price:     l.product.Price,
				Quantity:  l.quantity,
				LineTotal: l.total,
			})
		}
		if err := s.sales.CreateTx(tx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}

		if req.PaymentMethod == model.PayCredit {
			if _, err := s.customers.AdjustCreditTx(tx, *customerID, model.CreditIncrease, total, &sale.ID); err != nil {
				return err
			}
		}

		desc := fmt.Sprintf("Sale #%d", sale.Number)
		movement := &model.Transaction{
			Type:        model.TxIncome,
			Amount:      total,
			AccountID:   settlement.ID,
			Category:    "sales",
			Description: &desc,
			ReferenceID: &sale.ID,
			Status:      "completed",
		}
		if err := s.ledger.RecordTransactionTx(tx, movement); err != nil {
			return err
		}
		sale.TransactionID = &movement.ID
		if err := s.sales.LinkTransactionTx(tx, sale.ID, movement.ID); err != nil {
			return fmt.Errorf("link sale transaction: %w", err)
		}

		for _, l := range lines {
			if _, err := s.inventory.AdjustStockTx(tx, l.product.ID, -l.quantity, "sale", &sale.ID); err != nil {
				return err
			}
		}

		if customerID != nil {
			if err := s.customers.RecordPurchaseTx(tx, *customerID, total, now); err != nil {
				return fmt.Errorf("update purchase stats: %w", err)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	audit(ctx, s.auditLogs, &cashierID, "sale.checkout", "sale", &sale.ID,
		fmt.Sprintf("sale #%d total %s via %s", sale.Number, total.StringFixed(2), req.PaymentMethod))
	s.enqueueReceipt(ctx, sale.ID, req.CustomerEmail)

	return saleToResponse(sale), nil
}

// computeTax splits a gross cart amount into subtotal, tax and total.
// Exclusive: tax is added on top of the item prices.
// Inclusive: prices already contain tax and the portion is carved out.
func (s *saleService) computeTax(gross decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	if s.tax.RatePct.IsZero() {
		return gross, decimal.Zero, gross
	}
	rate := s.tax.RatePct.Div(decimal.NewFromInt(100))
	if s.tax.Inclusive {
		total = gross
		subtotal = gross.Div(decimal.NewFromInt(1).Add(rate)).Round(2)
		tax = total.Sub(subtotal)
		return subtotal, tax, total
	}
	subtotal = gross
	tax = gross.Mul(rate).Round(2)
	total = subtotal.Add(tax)
	return subtotal, tax, total
}

// ── Void ─────────────────────────────────────────────────────────────────────

func (s *saleService) VoidSale(ctx context.Context, actorID *uuid.UUID, saleID uuid.UUID, req dto.VoidSaleRequest) (*dto.SaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sale %s", ErrNotFound, saleID)
		}
		return nil, err
	}
	if sale.Status == model.SaleVoided {
		return nil, fmt.Errorf("%w: sale already voided", ErrValidation)
	}

	settlement, err := s.accounts.FindByPaymentMethod(ctx, sale.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: no settlement account for payment method %q", ErrUnsupportedPaymentMethod, sale.PaymentMethod)
	}

	txErr := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		// Guards run under the row lock: a concurrent void or return of
		// the same sale blocks here and then fails its own check.
		locked, err := s.sales.LockByIDTx(tx, saleID)
		if err != nil {
			return err
		}
		if locked.Status == model.SaleVoided {
			return fmt.Errorf("%w: sale already voided", ErrValidation)
		}
		rets, err := s.returns.ListBySaleTx(tx, saleID)
		if err != nil {
			return err
		}
		if len(rets) > 0 {
			return fmt.Errorf("%w: sale has processed returns and cannot be voided", ErrValidation)
		}

		if err := s.sales.UpdateStatusTx(tx, saleID, model.SaleCompleted, model.SaleVoided); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: sale is not voidable", ErrValidation)
			}
			return fmt.Errorf("void sale: %w", err)
		}

		// Compensating expense: the original income row stays, the void
		// is a new entry referencing the sale.
		desc := fmt.Sprintf("Void sale #%d: %s", sale.Number, req.Reason)
		movement := &model.Transaction{
			Type:        model.TxExpense,
			Amount:      sale.Total,
			AccountID:   settlement.ID,
			Category:    "sale_void",
			Description: &desc,
			ReferenceID: &saleID,
			Status:      "completed",
		}
		if err := s.ledger.RecordTransactionTx(tx, movement); err != nil {
			return err
		}

		for i := range sale.Items {
			item := &sale.Items[i]
			if _, err := s.inventory.AdjustStockTx(tx, item.ProductID, item.Quantity, "void_restore", &saleID); err != nil {
				return err
			}
		}

		if sale.PaymentMethod == model.PayCredit && sale.CustomerID != nil {
			if _, err := s.customers.AdjustCreditTx(tx, *sale.CustomerID, model.CreditDecrease, sale.Total, &saleID); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	sale.Status = model.SaleVoided
	audit(ctx, s.auditLogs, actorID, "sale.void", "sale", &saleID,
		fmt.Sprintf("sale #%d voided: %s", sale.Number, req.Reason))
	return saleToResponse(sale), nil
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sale %s", ErrNotFound, id)
		}
		return nil, err
	}
	return saleToResponse(sale), nil
}

func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sales, total, err := s.sales.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *saleService) enqueueReceipt(ctx context.Context, saleID uuid.UUID, email *string) {
	if s.receipts == nil {
		return
	}
	if err := s.receipts.EnqueueReceipt(ctx, saleID, email); err != nil {
		log.Error().Err(err).Str("sale_id", saleID.String()).Msg("receipt enqueue failed")
	}
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            sale.ID.String(),
		Number:        sale.Number,
		Subtotal:      sale.Subtotal,
		Tax:           sale.Tax,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		Status:        sale.Status,
		CreatedAt:     sale.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Items:         make([]dto.SaleItemResponse, 0, len(sale.Items)),
	}
	for i := range sale.Items {
		item := &sale.Items[i]
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		})
	}
	if sale.CustomerID != nil {
		id := sale.CustomerID.String()
		resp.CustomerID = &id
	}
	if sale.TransactionID != nil {
		id := sale.TransactionID.String()
		resp.TransactionID = &id
	}
	return resp
}

package service

import (
	"context"
	"testing"

	"bizledger/internal/dto"
	"bizledger/internal/events"
	"bizledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleFixture struct {
	svc       SaleService
	returns   ReturnService
	accounts  *stubAccountRepo
	products  *stubProductRepo
	movements *stubStockMovementRepo
	txns      *stubTransactionRepo
	sales     *stubSaleRepo
	rets      *stubReturnRepo
	customers *stubCustomerRepo
	credits   *stubCreditTransactionRepo
	receipts  *stubReceiptQueue

	cash *model.Account
	ar   *model.Account
}

func newSaleFixture(tax TaxPolicy) *saleFixture {
	f := &saleFixture{
		accounts:  newStubAccountRepo(),
		products:  newStubProductRepo(),
		movements: newStubStockMovementRepo(),
		txns:      newStubTransactionRepo(),
		sales:     newStubSaleRepo(),
		rets:      newStubReturnRepo(),
		customers: newStubCustomerRepo(),
		credits:   newStubCreditTransactionRepo(),
		receipts:  &stubReceiptQueue{},
	}

	cash := model.PayCash
	credit := model.PayCredit
	f.cash = f.accounts.add(&model.Account{Name: "Cash", Type: "asset", PaymentMethod: &cash, IsDefault: true})
	f.ar = f.accounts.add(&model.Account{Name: "Accounts Receivable", Type: "asset", PaymentMethod: &credit, IsDefault: true})

	audits := newStubAuditLogRepo()
	ledger := NewLedgerService(f.accounts, f.txns, audits, events.Noop{})
	inventory := NewInventoryService(f.products, f.movements, audits)
	custSvc := NewCustomerService(f.customers, f.credits, audits)

	f.svc = NewSaleService(f.sales, f.products, f.accounts, f.txns, f.rets, audits,
		ledger, inventory, custSvc, f.customers, f.receipts, tax)
	f.returns = NewReturnService(f.rets, f.sales, f.accounts, audits, ledger, inventory, custSvc)
	return f
}

func exclusiveTax16() TaxPolicy {
	return TaxPolicy{RatePct: decimal.NewFromInt(16)}
}

func noTax() TaxPolicy { return TaxPolicy{} }

func cartOf(productID string, qty int) []dto.CartItemRequest {
	return []dto.CartItemRequest{{ProductID: productID, Quantity: qty}}
}

func TestCheckout_ExclusiveTax(t *testing.T) {
	f := newSaleFixture(exclusiveTax16())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5, ReorderLevel: 1})
	cashier := newUUID(t)

	resp, err := f.svc.Checkout(context.Background(), cashier, dto.CheckoutRequest{
		Items:         cartOf(p.ID.String(), 2),
		PaymentMethod: model.PayCash,
	})
	require.NoError(t, err)

	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(20)), "subtotal = %s", resp.Subtotal)
	assert.True(t, resp.Tax.Equal(decimal.NewFromFloat(3.20)), "tax = %s", resp.Tax)
	assert.True(t, resp.Total.Equal(decimal.NewFromFloat(23.20)), "total = %s", resp.Total)
	assert.Equal(t, 1, resp.Number)
	assert.Equal(t, model.SaleCompleted, resp.Status)

	// Settlement account credited with the full total in the same workflow.
	assert.True(t, f.cash.Balance.Equal(decimal.NewFromFloat(23.20)), "cash = %s", f.cash.Balance)
	require.Len(t, f.txns.rows, 1)
	assert.Equal(t, model.TxIncome, f.txns.rows[0].Type)
	assert.Equal(t, "sales", f.txns.rows[0].Category)

	// Sale points at its income transaction.
	require.NotNil(t, resp.TransactionID)
	assert.Equal(t, f.txns.rows[0].ID.String(), *resp.TransactionID)

	// Stock decremented with a movement per line.
	assert.Equal(t, 3, p.Stock)
	require.Len(t, f.movements.rows, 1)
	assert.Equal(t, -2, f.movements.rows[0].Change)
	assert.Equal(t, "sale", f.movements.rows[0].Reason)

	// Receipt job enqueued after commit.
	require.Len(t, f.receipts.saleIDs, 1)
	assert.Equal(t, resp.ID, f.receipts.saleIDs[0].String())
}

func TestCheckout_InclusiveTax(t *testing.T) {
	f := newSaleFixture(TaxPolicy{RatePct: decimal.NewFromInt(16), Inclusive: true})
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromFloat(11.60), Stock: 5})

	resp, err := f.svc.Checkout(context.Background(), newUUID(t), dto.CheckoutRequest{
		Items:         cartOf(p.ID.String(), 2),
		PaymentMethod: model.PayCash,
	})
	require.NoError(t, err)

	// Prices already contain tax: the portion is carved out of the gross.
	assert.True(t, resp.Total.Equal(decimal.NewFromFloat(23.20)), "total = %s", resp.Total)
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(20)), "subtotal = %s", resp.Subtotal)
	assert.True(t, resp.Tax.Equal(decimal.NewFromFloat(3.20)), "tax = %s", resp.Tax)
}

func TestCheckout_ZeroRate(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})

	resp, err := f.svc.Checkout(context.Background(), newUUID(t), dto.CheckoutRequest{
		Items:         cartOf(p.ID.String(), 2),
		PaymentMethod: model.PayCash,
	})
	require.NoError(t, err)
	assert.True(t, resp.Tax.IsZero())
	assert.True(t, resp.Total.Equal(resp.Subtotal))
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newSaleFixture(noTax())

	_, err := f.svc.Checkout(context.Background(), newUUID(t), dto.CheckoutRequest{
		PaymentMethod: model.PayCash,
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_UnsupportedPaymentMethod(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})

	_, err := f.svc.Checkout(context.Background(), newUUID(t), dto.CheckoutRequest{
		Items:         cartOf(p.ID.String(), 1),
		PaymentMethod: "crypto",
	})
	assert.ErrorIs(t, err, ErrUnsupportedPaymentMethod)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 1})

	_, err := f.svc.Checkout(context.Background(), newUUID(t), dto.CheckoutRequest{
		Items:         cartOf(p.ID.String(), 3),
		PaymentMethod: model.PayCash,
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 1, p.Stock)
	assert.Empty(t, f.sales.sales)
}

func TestCheckout_MergesDuplicateLines(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})

	resp, err := f.svc.Checkout(context.Background(), newUUID(t), dto.CheckoutRequest{
		Items: []dto.CartItemRequest{
			{ProductID: p.ID.String(), Quantity: 1},
			{ProductID: p.ID.String(), Quantity: 2},
		},
		PaymentMethod: model.PayCash,
	})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, 3, resp.Items[0].Quantity)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 2, p.Stock)
}

func TestCheckout_CreditSale(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})
	c := f.customers.add(&model.Customer{Name: "Ana", CreditLimit: decimal.NewFromInt(100)})

	customerID := c.ID.String()
	resp, err := f.svc.Checkout(context.Background(), newUUID(t), dto.CheckoutRequest{
		Items:         cartOf(p.ID.String(), 2),
		PaymentMethod: model.PayCredit,
		CustomerID:    &customerID,
	})
	require.NoError(t, err)

	// Outstanding balance grows by the sale total, with an audit row
	// referencing the sale.
	assert.True(t, c.OutstandingBalance.Equal(decimal.NewFromInt(20)))
	require.Len(t, f.credits.rows, 1)
	assert.Equal(t, model.CreditIncrease, f.credits.rows[0].Kind)
	require.NotNil(t, f.credits.rows[0].ReferenceID)
	assert.Equal(t, resp.ID, f.credits.rows[0].ReferenceID.String())

	// The receivable account carries the income.
	assert.True(t, f.ar.Balance.Equal(decimal.NewFromInt(20)))
	assert.True(t, f.cash.Balance.IsZero())

	// Purchase statistics bumped.
	assert.Equal(t, 1, c.TotalPurchases)
	assert.True(t, c.TotalSpent.Equal(decimal.NewFromInt(20)))
	assert.NotNil(t, c.FirstPurchaseAt)
}

func TestCheckout_CreditLimitExceeded(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})
	c := f.customers.add(&model.Customer{
		Name:               "Ana",
		CreditLimit:        decimal.NewFromInt(100),
		OutstandingBalance: decimal.NewFromInt(90),
	})

	customerID := c.ID.String()
	_, err := f.svc.Checkout(context.Background(), newUUID(t), dto.CheckoutRequest{
		Items:         cartOf(p.ID.String(), 2), // total 20, would land at 110
		PaymentMethod: model.PayCredit,
		CustomerID:    &customerID,
	})

	var limitErr *CreditLimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.True(t, limitErr.Attempted.Equal(decimal.NewFromInt(110)))

	// Nothing committed.
	assert.True(t, c.OutstandingBalance.Equal(decimal.NewFromInt(90)))
	assert.Equal(t, 5, p.Stock)
	assert.Empty(t, f.sales.sales)
	assert.Empty(t, f.txns.rows)
}

func TestCheckout_CreditRequiresCustomer(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})

	_, err := f.svc.Checkout(context.Background(), newUUID(t), dto.CheckoutRequest{
		Items:         cartOf(p.ID.String(), 1),
		PaymentMethod: model.PayCredit,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckout_SaleNumbersIncrement(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 10})

	first, err := f.svc.Checkout(context.Background(), newUUID(t), dto.CheckoutRequest{
		Items: cartOf(p.ID.String(), 1), PaymentMethod: model.PayCash,
	})
	require.NoError(t, err)
	second, err := f.svc.Checkout(context.Background(), newUUID(t), dto.CheckoutRequest{
		Items: cartOf(p.ID.String(), 1), PaymentMethod: model.PayCash,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, second.Number)
}

// ── Void ─────────────────────────────────────────────────────────────────────

func TestVoidSale_RestoresStockAndCompensates(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})

	sale, err := f.svc.Checkout(context.Background(), newUUID(t), dto.CheckoutRequest{
		Items: cartOf(p.ID.String(), 2), PaymentMethod: model.PayCash,
	})
	require.NoError(t, err)
	require.Equal(t, 3, p.Stock)

	saleID := mustParseUUID(t, sale.ID)
	voided, err := f.svc.VoidSale(context.Background(), nil, saleID, dto.VoidSaleRequest{Reason: "customer walked out"})
	require.NoError(t, err)

	assert.Equal(t, model.SaleVoided, voided.Status)
	assert.Equal(t, 5, p.Stock)
	assert.True(t, f.cash.Balance.IsZero(), "cash = %s", f.cash.Balance)

	// Original income row survives; the void is a compensating expense.
	require.Len(t, f.txns.rows, 2)
	assert.Equal(t, model.TxIncome, f.txns.rows[0].Type)
	assert.Equal(t, model.TxExpense, f.txns.rows[1].Type)
	assert.Equal(t, "sale_void", f.txns.rows[1].Category)

	// Stock restoration leaves its own movement trail.
	require.Len(t, f.movements.rows, 2)
	assert.Equal(t, "void_restore", f.movements.rows[1].Reason)
}

func TestVoidSale_CreditSaleUnwindsBalance(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})
	c := f.customers.add(&model.Customer{Name: "Ana", CreditLimit: decimal.NewFromInt(100)})

	customerID := c.ID.String()
	sale, err := f.svc.Checkout(context.Background(), newUUID(t), dto.CheckoutRequest{
		Items:         cartOf(p.ID.String(), 2),
		PaymentMethod: model.PayCredit,
		CustomerID:    &customerID,
	})
	require.NoError(t, err)
	require.True(t, c.OutstandingBalance.Equal(decimal.NewFromInt(20)))

	_, err = f.svc.VoidSale(context.Background(), nil, mustParseUUID(t, sale.ID), dto.VoidSaleRequest{Reason: "order mistake"})
	require.NoError(t, err)

	assert.True(t, c.OutstandingBalance.IsZero())
	require.Len(t, f.credits.rows, 2)
	assert.Equal(t, model.CreditDecrease, f.credits.rows[1].Kind)
}

func TestVoidSale_AlreadyVoided(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})

	sale, err := f.svc.Checkout(context.Background(), newUUID(t), dto.CheckoutRequest{
		Items: cartOf(p.ID.String(), 1), PaymentMethod: model.PayCash,
	})
	require.NoError(t, err)

	saleID := mustParseUUID(t, sale.ID)
	_, err = f.svc.VoidSale(context.Background(), nil, saleID, dto.VoidSaleRequest{Reason: "first void"})
	require.NoError(t, err)

	_, err = f.svc.VoidSale(context.Background(), nil, saleID, dto.VoidSaleRequest{Reason: "second void"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestVoidSale_RejectedAfterReturns(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})

	sale, err := f.svc.Checkout(context.Background(), newUUID(t), dto.CheckoutRequest{
		Items: cartOf(p.ID.String(), 2), PaymentMethod: model.PayCash,
	})
	require.NoError(t, err)

	_, err = f.returns.ProcessReturn(context.Background(), nil, dto.ProcessReturnRequest{
		SaleID: sale.ID,
		Items:  []dto.ReturnItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.svc.VoidSale(context.Background(), nil, mustParseUUID(t, sale.ID), dto.VoidSaleRequest{Reason: "too late now"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestVoidSale_GuardRecheckedUnderLock(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})
	sale := checkout(t, f, p, 2)
	saleID := mustParseUUID(t, sale.ID)

	// A concurrent void commits between our pre-flight read and the
	// moment the sale row lock is granted.
	f.sales.beforeLock = func() {
		f.sales.beforeLock = nil
		f.sales.sales[saleID].Status = model.SaleVoided
	}

	_, err := f.svc.VoidSale(context.Background(), nil, saleID, dto.VoidSaleRequest{Reason: "duplicate"})
	assert.ErrorIs(t, err, ErrValidation)

	// No compensating expense, no restock.
	assert.Len(t, f.txns.rows, 1)
	assert.Equal(t, 3, p.Stock)
}

func TestVoidSale_RejectedWhenReturnLandsFirst(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})
	sale := checkout(t, f, p, 2)
	saleID := mustParseUUID(t, sale.ID)

	// A return against the sale commits just before the lock is granted.
	f.sales.beforeLock = func() {
		f.sales.beforeLock = nil
		_ = f.rets.CreateTx(nil, &model.Return{
			SaleID: saleID,
			Items:  []model.ReturnItem{{ProductID: p.ID, Quantity: 1}},
		})
	}

	_, err := f.svc.VoidSale(context.Background(), nil, saleID, dto.VoidSaleRequest{Reason: "duplicate"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, model.SaleCompleted, f.sales.sales[saleID].Status)
}

func TestVoidSale_NotFound(t *testing.T) {
	f := newSaleFixture(noTax())

	_, err := f.svc.VoidSale(context.Background(), nil, newUUID(t), dto.VoidSaleRequest{Reason: "missing sale"})
	assert.ErrorIs(t, err, ErrNotFound)
}

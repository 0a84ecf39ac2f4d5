package service

import (
	"context"
	"testing"

	"bizledger/internal/dto"
	"bizledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkout is a fixture shortcut: sells qty units of p for cash.
func checkout(t *testing.T, f *saleFixture, p *model.Product, qty int) *dto.SaleResponse {
	t.Helper()
	sale, err := f.svc.Checkout(context.Background(), newUUID(t), dto.CheckoutRequest{
		Items:         cartOf(p.ID.String(), qty),
		PaymentMethod: model.PayCash,
	})
	require.NoError(t, err)
	return sale
}

func TestProcessReturn_RefundsAtSalePrice(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})
	sale := checkout(t, f, p, 2)
	require.Equal(t, 3, p.Stock)

	resp, err := f.returns.ProcessReturn(context.Background(), nil, dto.ProcessReturnRequest{
		SaleID: sale.ID,
		Items:  []dto.ReturnItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	assert.True(t, resp.RefundAmount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 4, p.Stock)

	// Refund is an expense row against the settlement account.
	require.Len(t, f.txns.rows, 2)
	refundTxn := f.txns.rows[1]
	assert.Equal(t, model.TxExpense, refundTxn.Type)
	assert.Equal(t, "refunds", refundTxn.Category)
	assert.Equal(t, refundTxn.ID.String(), resp.RefundTransactionID)
	assert.True(t, f.cash.Balance.Equal(decimal.NewFromInt(10)), "cash = %s", f.cash.Balance)

	// Restock leaves a movement.
	require.Len(t, f.movements.rows, 2)
	assert.Equal(t, "return", f.movements.rows[1].Reason)
	assert.Equal(t, 1, f.movements.rows[1].Change)
}

func TestProcessReturn_RefundIncludesProportionalTax(t *testing.T) {
	f := newSaleFixture(exclusiveTax16())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})
	sale := checkout(t, f, p, 2) // subtotal 20, tax 3.20, total 23.20

	resp, err := f.returns.ProcessReturn(context.Background(), nil, dto.ProcessReturnRequest{
		SaleID: sale.ID,
		Items:  []dto.ReturnItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	// One unit of 10 plus its share of the tax: 10 × 23.20 / 20 = 11.60.
	assert.True(t, resp.RefundAmount.Equal(decimal.NewFromFloat(11.60)), "refund = %s", resp.RefundAmount)
}

func TestProcessReturn_InclusiveTaxRefundsWhatWasPaid(t *testing.T) {
	f := newSaleFixture(TaxPolicy{RatePct: decimal.NewFromInt(16), Inclusive: true})
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromFloat(11.60), Stock: 5})
	sale := checkout(t, f, p, 2) // total 23.20, subtotal 20, tax 3.20

	resp, err := f.returns.ProcessReturn(context.Background(), nil, dto.ProcessReturnRequest{
		SaleID: sale.ID,
		Items:  []dto.ReturnItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	// The line price already contains the tax; the refund is exactly the
	// unit price, never scaled up.
	assert.True(t, resp.RefundAmount.Equal(decimal.NewFromFloat(11.60)), "refund = %s", resp.RefundAmount)
	assert.True(t, f.cash.Balance.Equal(decimal.NewFromFloat(11.60)), "cash = %s", f.cash.Balance)
}

func TestProcessReturn_GuardRecheckedUnderLock(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})
	sale := checkout(t, f, p, 2)
	saleID := mustParseUUID(t, sale.ID)

	// Another return of both units commits between our pre-flight read
	// and the moment the sale row lock is granted.
	f.sales.beforeLock = func() {
		f.sales.beforeLock = nil
		_ = f.rets.CreateTx(nil, &model.Return{
			SaleID: saleID,
			Items:  []model.ReturnItem{{ProductID: p.ID, Quantity: 2}},
		})
	}

	_, err := f.returns.ProcessReturn(context.Background(), nil, dto.ProcessReturnRequest{
		SaleID: sale.ID,
		Items:  []dto.ReturnItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrOverReturn)

	// Only the income row and the concurrent return exist.
	assert.Len(t, f.txns.rows, 1)
	assert.Len(t, f.rets.rows, 1)
}

func TestProcessReturn_OverReturnRejected(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})
	sale := checkout(t, f, p, 2)

	_, err := f.returns.ProcessReturn(context.Background(), nil, dto.ProcessReturnRequest{
		SaleID: sale.ID,
		Items:  []dto.ReturnItemRequest{{ProductID: p.ID.String(), Quantity: 3}},
	})
	assert.ErrorIs(t, err, ErrOverReturn)

	// Nothing moved.
	assert.Equal(t, 3, p.Stock)
	assert.Len(t, f.txns.rows, 1)
	assert.Empty(t, f.rets.rows)
}

func TestProcessReturn_PriorReturnsCountAgainstRemaining(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})
	sale := checkout(t, f, p, 2)

	_, err := f.returns.ProcessReturn(context.Background(), nil, dto.ProcessReturnRequest{
		SaleID: sale.ID,
		Items:  []dto.ReturnItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	// Only one unit left returnable.
	_, err = f.returns.ProcessReturn(context.Background(), nil, dto.ProcessReturnRequest{
		SaleID: sale.ID,
		Items:  []dto.ReturnItemRequest{{ProductID: p.ID.String(), Quantity: 2}},
	})
	assert.ErrorIs(t, err, ErrOverReturn)

	_, err = f.returns.ProcessReturn(context.Background(), nil, dto.ProcessReturnRequest{
		SaleID: sale.ID,
		Items:  []dto.ReturnItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
}

func TestProcessReturn_CreditSaleUnwindsBalance(t *testing.T) {
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

	_, err = f.returns.ProcessReturn(context.Background(), nil, dto.ProcessReturnRequest{
		SaleID: sale.ID,
		Items:  []dto.ReturnItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	assert.True(t, c.OutstandingBalance.Equal(decimal.NewFromInt(10)))
	require.Len(t, f.credits.rows, 2)
	assert.Equal(t, model.CreditDecrease, f.credits.rows[1].Kind)
}

func TestProcessReturn_ProductNotInSale(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})
	other := f.products.add(&model.Product{SKU: "B-1", Name: "Gadget", Price: decimal.NewFromInt(5), Stock: 5})
	sale := checkout(t, f, p, 1)

	_, err := f.returns.ProcessReturn(context.Background(), nil, dto.ProcessReturnRequest{
		SaleID: sale.ID,
		Items:  []dto.ReturnItemRequest{{ProductID: other.ID.String(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProcessReturn_VoidedSaleRejected(t *testing.T) {
	f := newSaleFixture(noTax())
	p := f.products.add(&model.Product{SKU: "A-1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5})
	sale := checkout(t, f, p, 1)

	_, err := f.svc.VoidSale(context.Background(), nil, mustParseUUID(t, sale.ID), dto.VoidSaleRequest{Reason: "wrong order"})
	require.NoError(t, err)

	_, err = f.returns.ProcessReturn(context.Background(), nil, dto.ProcessReturnRequest{
		SaleID: sale.ID,
		Items:  []dto.ReturnItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProcessReturn_UnknownSale(t *testing.T) {
	f := newSaleFixture(noTax())

	_, err := f.returns.ProcessReturn(context.Background(), nil, dto.ProcessReturnRequest{
		SaleID: newUUID(t).String(),
		Items:  []dto.ReturnItemRequest{{ProductID: newUUID(t).String(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProcessReturn_NoItems(t *testing.T) {
	f := newSaleFixture(noTax())

	_, err := f.returns.ProcessReturn(context.Background(), nil, dto.ProcessReturnRequest{
		SaleID: newUUID(t).String(),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

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

func newCustomerFixture() (CustomerService, *stubCustomerRepo, *stubCreditTransactionRepo) {
	customers := newStubCustomerRepo()
	credits := newStubCreditTransactionRepo()
	svc := NewCustomerService(customers, credits, newStubAuditLogRepo())
	return svc, customers, credits
}

func TestAdjustCredit_IncreaseWithinLimit(t *testing.T) {
	svc, customers, credits := newCustomerFixture()
	c := customers.add(&model.Customer{Name: "Ana", CreditLimit: decimal.NewFromInt(100)})

	resp, err := svc.AdjustCredit(context.Background(), nil, c.ID, dto.AdjustCreditRequest{
		Kind:   model.CreditIncrease,
		Amount: decimal.NewFromInt(60),
	})
	require.NoError(t, err)

	assert.True(t, resp.BalanceBefore.Equal(decimal.Zero))
	assert.True(t, resp.BalanceAfter.Equal(decimal.NewFromInt(60)))
	assert.True(t, c.OutstandingBalance.Equal(decimal.NewFromInt(60)))

	require.Len(t, credits.rows, 1)
	assert.Equal(t, model.CreditIncrease, credits.rows[0].Kind)
	assert.True(t, credits.rows[0].BalanceAfter.Equal(decimal.NewFromInt(60)))
}

func TestAdjustCredit_IncreaseExceedsLimit(t *testing.T) {
	svc, customers, credits := newCustomerFixture()
	c := customers.add(&model.Customer{
		Name:               "Ana",
		CreditLimit:        decimal.NewFromInt(100),
		OutstandingBalance: decimal.NewFromInt(90),
	})

	_, err := svc.AdjustCredit(context.Background(), nil, c.ID, dto.AdjustCreditRequest{
		Kind:   model.CreditIncrease,
		Amount: decimal.NewFromInt(20),
	})

	var limitErr *CreditLimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.True(t, limitErr.Limit.Equal(decimal.NewFromInt(100)))
	assert.True(t, limitErr.Attempted.Equal(decimal.NewFromInt(110)))

	// Balance untouched, no audit row appended.
	assert.True(t, c.OutstandingBalance.Equal(decimal.NewFromInt(90)))
	assert.Empty(t, credits.rows)
}

func TestAdjustCredit_IncreaseExactlyAtLimit(t *testing.T) {
	svc, customers, _ := newCustomerFixture()
	c := customers.add(&model.Customer{
		Name:               "Ana",
		CreditLimit:        decimal.NewFromInt(100),
		OutstandingBalance: decimal.NewFromInt(90),
	})

	_, err := svc.AdjustCredit(context.Background(), nil, c.ID, dto.AdjustCreditRequest{
		Kind:   model.CreditIncrease,
		Amount: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.True(t, c.OutstandingBalance.Equal(decimal.NewFromInt(100)))
}

func TestAdjustCredit_ZeroLimitMeansUnlimited(t *testing.T) {
	svc, customers, _ := newCustomerFixture()
	c := customers.add(&model.Customer{Name: "Ana"})

	_, err := svc.AdjustCredit(context.Background(), nil, c.ID, dto.AdjustCreditRequest{
		Kind:   model.CreditIncrease,
		Amount: decimal.NewFromInt(100000),
	})
	require.NoError(t, err)
	assert.True(t, c.OutstandingBalance.Equal(decimal.NewFromInt(100000)))
}

func TestAdjustCredit_PaymentClampsAtZero(t *testing.T) {
	svc, customers, credits := newCustomerFixture()
	c := customers.add(&model.Customer{
		Name:               "Ana",
		OutstandingBalance: decimal.NewFromInt(40),
	})

	resp, err := svc.AdjustCredit(context.Background(), nil, c.ID, dto.AdjustCreditRequest{
		Kind:   model.CreditPayment,
		Amount: decimal.NewFromInt(60),
	})
	require.NoError(t, err)

	assert.True(t, resp.BalanceAfter.Equal(decimal.Zero))
	assert.True(t, c.OutstandingBalance.Equal(decimal.Zero))
	require.Len(t, credits.rows, 1)
	assert.True(t, credits.rows[0].BalanceBefore.Equal(decimal.NewFromInt(40)))
}

func TestAdjustCredit_RejectsNonPositiveAmount(t *testing.T) {
	svc, customers, _ := newCustomerFixture()
	c := customers.add(&model.Customer{Name: "Ana"})

	_, err := svc.AdjustCredit(context.Background(), nil, c.ID, dto.AdjustCreditRequest{
		Kind:   model.CreditIncrease,
		Amount: decimal.Zero,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAdjustCredit_RejectsUnknownKind(t *testing.T) {
	svc, customers, _ := newCustomerFixture()
	c := customers.add(&model.Customer{Name: "Ana"})

	_, err := svc.AdjustCredit(context.Background(), nil, c.ID, dto.AdjustCreditRequest{
		Kind:   "refill",
		Amount: decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAdjustCredit_UnknownCustomer(t *testing.T) {
	svc, _, _ := newCustomerFixture()

	_, err := svc.AdjustCredit(context.Background(), nil, newUUID(t), dto.AdjustCreditRequest{
		Kind:   model.CreditIncrease,
		Amount: decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeactivateCustomer_RejectsOutstandingBalance(t *testing.T) {
	svc, customers, _ := newCustomerFixture()
	c := customers.add(&model.Customer{
		Name:               "Ana",
		OutstandingBalance: decimal.NewFromInt(25),
	})

	err := svc.DeactivateCustomer(context.Background(), c.ID)
	assert.ErrorIs(t, err, ErrValidation)
	assert.True(t, c.Active)
}

func TestDeactivateCustomer_ZeroBalance(t *testing.T) {
	svc, customers, _ := newCustomerFixture()
	c := customers.add(&model.Customer{Name: "Ana"})

	require.NoError(t, svc.DeactivateCustomer(context.Background(), c.ID))
	assert.False(t, c.Active)
}

func TestCreditHistory_ReturnsAuditRows(t *testing.T) {
	svc, customers, _ := newCustomerFixture()
	c := customers.add(&model.Customer{Name: "Ana", CreditLimit: decimal.NewFromInt(500)})

	for _, amount := range []int64{100, 50} {
		_, err := svc.AdjustCredit(context.Background(), nil, c.ID, dto.AdjustCreditRequest{
			Kind:   model.CreditIncrease,
			Amount: decimal.NewFromInt(amount),
		})
		require.NoError(t, err)
	}

	history, err := svc.CreditHistory(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[1].BalanceAfter.Equal(decimal.NewFromInt(150)))
}

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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerService owns customer records and their credit state. Credit
// mutations lock the customer row, so concurrent adjusters serialize and
// the limit check is evaluated against the committed balance.
type CustomerService interface {
	CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)
	ListCustomers(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	DeactivateCustomer(ctx context.Context, id uuid.UUID) error

	AdjustCredit(ctx context.Context, actorID *uuid.UUID, customerID uuid.UUID, req dto.AdjustCreditRequest) (*dto.CreditAdjustmentResponse, error)
	CreditHistory(ctx context.Context, customerID uuid.UUID) ([]dto.CreditTransactionResponse, error)

	// AdjustCreditTx mutates credit inside an already-open transaction.
	// Checkout uses it for credit sales; returns use it to unwind them.
	AdjustCreditTx(tx *gorm.DB, customerID uuid.UUID, kind string, amount decimal.Decimal, referenceID *uuid.UUID) (*dto.CreditAdjustmentResponse, error)
	// RecordPurchaseTx bumps purchase statistics after a completed sale.
	RecordPurchaseTx(tx *gorm.DB, customerID uuid.UUID, total decimal.Decimal, at time.Time) error
}

type customerService struct {
	customers repository.CustomerRepository
	credits   repository.CreditTransactionRepository
	auditLogs repository.AuditLogRepository
}

func NewCustomerService(
	customers repository.CustomerRepository,
	credits repository.CreditTransactionRepository,
	auditLogs repository.AuditLogRepository,
) CustomerService {
	return &customerService{
		customers: customers,
		credits:   credits,
		auditLogs: auditLogs,
	}
}

// ── Customer CRUD ────────────────────────────────────────────────────────────

func (s *customerService) CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if req.CreditLimit.IsNegative() {
		return nil, fmt.Errorf("%w: credit limit must not be negative", ErrValidation)
	}
	c := &model.Customer{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		CreditLimit: req.CreditLimit,
		Active:      true,
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customerToResponse(c), nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: customer %s", ErrNotFound, id)
	}
	return customerToResponse(c), nil
}

func (s *customerService) ListCustomers(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	customers, total, err := s.customers.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, *customerToResponse(&customers[i]))
	}
	return &dto.CustomerListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: customer %s", ErrNotFound, id)
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}
	if req.CreditLimit != nil {
		if req.CreditLimit.IsNegative() {
			return nil, fmt.Errorf("%w: credit limit must not be negative", ErrValidation)
		}
		// Lowering a limit below the outstanding balance is allowed; the
		// customer just cannot take new credit until they pay down.
		c.CreditLimit = *req.CreditLimit
	}
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return customerToResponse(c), nil
}

func (s *customerService) DeactivateCustomer(ctx context.Context, id uuid.UUID) error {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: customer %s", ErrNotFound, id)
	}
	if c.OutstandingBalance.IsPositive() {
		return fmt.Errorf("%w: customer has outstanding balance %s", ErrValidation, c.OutstandingBalance.StringFixed(2))
	}
	return s.customers.SoftDelete(ctx, id)
}

// ── Credit adjuster ──────────────────────────────────────────────────────────

func (s *customerService) AdjustCredit(ctx context.Context, actorID *uuid.UUID, customerID uuid.UUID, req dto.AdjustCreditRequest) (*dto.CreditAdjustmentResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	var result *dto.CreditAdjustmentResponse
	err := runTx(ctx, s.customers.DB(), func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.AdjustCreditTx(tx, customerID, req.Kind, req.Amount, nil)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	audit(ctx, s.auditLogs, actorID, "credit.adjust", "customer", &customerID,
		fmt.Sprintf("%s %s: %s -> %s", req.Kind, req.Amount.StringFixed(2), result.BalanceBefore.StringFixed(2), result.BalanceAfter.StringFixed(2)))
	return result, nil
}

func (s *customerService) AdjustCreditTx(tx *gorm.DB, customerID uuid.UUID, kind string, amount decimal.Decimal, referenceID *uuid.UUID) (*dto.CreditAdjustmentResponse, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	c, err := s.customers.LockByIDTx(tx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, customerID)
		}
		return nil, err
	}

	before := c.OutstandingBalance
	var after decimal.Decimal
	switch kind {
	case model.CreditIncrease:
		after = before.Add(amount)
		if !c.UnlimitedCredit() && after.GreaterThan(c.CreditLimit) {
			return nil, &CreditLimitExceededError{
				CustomerID: customerID,
				Limit:      c.CreditLimit,
				Attempted:  after,
			}
		}
	case model.CreditDecrease, model.CreditPayment:
		// Clamp at zero: paying more than owed leaves a zero balance,
		// never a negative one.
		after = before.Sub(amount)
		if after.IsNegative() {
			after = decimal.Zero
		}
	default:
		return nil, fmt.Errorf("%w: unknown credit adjustment kind %q", ErrValidation, kind)
	}

	if err := s.customers.UpdateBalanceTx(tx, customerID, after); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}
	row := &model.CreditTransaction{
		CustomerID:    customerID,
		Kind:          kind,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		ReferenceID:   referenceID,
	}
	if err := s.credits.CreateTx(tx, row); err != nil {
		return nil, fmt.Errorf("append credit transaction: %w", err)
	}

	return &dto.CreditAdjustmentResponse{
		CustomerID:    customerID.String(),
		Kind:          kind,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
	}, nil
}

func (s *customerService) RecordPurchaseTx(tx *gorm.DB, customerID uuid.UUID, total decimal.Decimal, at time.Time) error {
	return s.customers.UpdatePurchaseStatsTx(tx, customerID, total, at)
}

func (s *customerService) CreditHistory(ctx context.Context, customerID uuid.UUID) ([]dto.CreditTransactionResponse, error) {
	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		return nil, fmt.Errorf("%w: customer %s", ErrNotFound, customerID)
	}
	rows, err := s.credits.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CreditTransactionResponse, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		items = append(items, dto.CreditTransactionResponse{
			ID:            r.ID.String(),
			Kind:          r.Kind,
			Amount:        r.Amount,
			BalanceBefore: r.BalanceBefore,
			BalanceAfter:  r.BalanceAfter,
			CreatedAt:     r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return items, nil
}

func customerToResponse(c *model.Customer) *dto.CustomerResponse {
	resp := &dto.CustomerResponse{
		ID:                 c.ID.String(),
		Name:               c.Name,
		Email:              c.Email,
		Phone:              c.Phone,
		OutstandingBalance: c.OutstandingBalance,
		CreditLimit:        c.CreditLimit,
		TotalPurchases:     c.TotalPurchases,
		TotalSpent:         c.TotalSpent,
	}
	if c.LastPurchaseAt != nil {
		at := c.LastPurchaseAt.Format("2006-01-02T15:04:05Z")
		resp.LastPurchaseAt = &at
	}
	return resp
}

package service

import (
	"context"
	"errors"
	"fmt"

	"bizledger/internal/dto"
	"bizledger/internal/events"
	"bizledger/internal/model"
	"bizledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerService owns accounts and the transaction log. Every balance
// mutation flows through here: the balance delta and the appended
// transaction row commit in the same database transaction, so a reader
// can never observe a logged movement without its balance effect.
type LedgerService interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*dto.AccountResponse, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*dto.AccountResponse, error)
	ListAccounts(ctx context.Context) ([]dto.AccountResponse, error)
	UpdateAccount(ctx context.Context, id uuid.UUID, req dto.UpdateAccountRequest) (*dto.AccountResponse, error)

	RecordTransaction(ctx context.Context, actorID *uuid.UUID, req dto.RecordTransactionRequest) (*dto.TransactionResponse, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*dto.TransactionResponse, error)
	ListTransactions(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error)

	// RecordTransactionTx applies a movement inside an already-open
	// transaction. Compound workflows (checkout, returns) compose on it.
	RecordTransactionTx(tx *gorm.DB, t *model.Transaction) error
}

type ledgerService struct {
	accounts  repository.AccountRepository
	txns      repository.TransactionRepository
	auditLogs repository.AuditLogRepository
	publisher events.Publisher
}

func NewLedgerService(
	accounts repository.AccountRepository,
	txns repository.TransactionRepository,
	auditLogs repository.AuditLogRepository,
	publisher events.Publisher,
) LedgerService {
	return &ledgerService{
		accounts:  accounts,
		txns:      txns,
		auditLogs: auditLogs,
		publisher: publisher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Accounts ─────────────────────────────────────────────────────────────────

func (s *ledgerService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*dto.AccountResponse, error) {
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	account := &model.Account{
		Name:          req.Name,
		Type:          req.Type,
		Balance:       req.OpeningBalance,
		Currency:      currency,
		PaymentMethod: req.PaymentMethod,
		IsDefault:     req.IsDefault,
		Active:        true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return accountToResponse(account), nil
}

func (s *ledgerService) GetAccount(ctx context.Context, id uuid.UUID) (*dto.AccountResponse, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: account %s", ErrNotFound, id)
	}
	return accountToResponse(account), nil
}

func (s *ledgerService) ListAccounts(ctx context.Context) ([]dto.AccountResponse, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, *accountToResponse(&accounts[i]))
	}
	return resp, nil
}

func (s *ledgerService) UpdateAccount(ctx context.Context, id uuid.UUID, req dto.UpdateAccountRequest) (*dto.AccountResponse, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: account %s", ErrNotFound, id)
	}
	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.PaymentMethod != nil {
		account.PaymentMethod = req.PaymentMethod
	}
	if req.IsDefault != nil {
		account.IsDefault = *req.IsDefault
	}
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return accountToResponse(account), nil
}

// ── RecordTransaction ────────────────────────────────────────────────────────
// income:   account balance += amount
// expense:  account balance -= amount
// transfer: account balance -= amount, destination balance += amount

func (s *ledgerService) RecordTransaction(ctx context.Context, actorID *uuid.UUID, req dto.RecordTransactionRequest) (*dto.TransactionResponse, error) {
	t, err := s.buildTransaction(ctx, req)
	if err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.accounts.DB(), func(tx *gorm.DB) error {
		return s.RecordTransactionTx(tx, t)
	})
	if txErr != nil {
		return nil, txErr
	}

	audit(ctx, s.auditLogs, actorID, "transaction.record", "transaction", &t.ID,
		fmt.Sprintf("%s %s on account %s (%s)", t.Type, t.Amount.StringFixed(2), t.AccountID, t.Category))
	s.publish(ctx, t)

	return transactionToResponse(t), nil
}

// buildTransaction validates the request and resolves both accounts.
// Runs outside the write transaction — pure reads.
func (s *ledgerService) buildTransaction(ctx context.Context, req dto.RecordTransactionRequest) (*model.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if req.Category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrValidation)
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid account_id", ErrValidation)
	}
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("%w: account %s", ErrNotFound, accountID)
	}

	t := &model.Transaction{
		Type:        req.Type,
		Amount:      req.Amount,
		AccountID:   accountID,
		Category:    req.Category,
		Description: req.Description,
		Status:      "completed",
	}

	switch req.Type {
	case model.TxIncome, model.TxExpense:
		if req.ToAccountID != nil {
			return nil, fmt.Errorf("%w: to_account_id is only valid for transfers", ErrValidation)
		}
	case model.TxTransfer:
		if req.ToAccountID == nil {
			return nil, fmt.Errorf("%w: transfer requires to_account_id", ErrValidation)
		}
		toID, err := uuid.Parse(*req.ToAccountID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid to_account_id", ErrValidation)
		}
		if toID == accountID {
			return nil, fmt.Errorf("%w: transfer source and destination must differ", ErrValidation)
		}
		if _, err := s.accounts.FindByID(ctx, toID); err != nil {
			return nil, fmt.Errorf("%w: account %s", ErrNotFound, toID)
		}
		t.ToAccountID = &toID
	default:
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrValidation, req.Type)
	}

	return t, nil
}

func (s *ledgerService) RecordTransactionTx(tx *gorm.DB, t *model.Transaction) error {
	var delta decimal.Decimal
	switch t.Type {
	case model.TxIncome:
		delta = t.Amount
	case model.TxExpense:
		delta = t.Amount.Neg()
	case model.TxTransfer:
		delta = t.Amount.Neg()
	default:
		return fmt.Errorf("%w: unknown transaction type %q", ErrValidation, t.Type)
	}

	if err := s.accounts.AdjustBalanceTx(tx, t.AccountID, delta); err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	if t.Type == model.TxTransfer {
		if err := s.accounts.AdjustBalanceTx(tx, *t.ToAccountID, t.Amount); err != nil {
			return fmt.Errorf("adjust destination balance: %w", err)
		}
	}
	if err := s.txns.CreateTx(tx, t); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

func (s *ledgerService) GetTransaction(ctx context.Context, id uuid.UUID) (*dto.TransactionResponse, error) {
	t, err := s.txns.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: transaction %s", ErrNotFound, id)
		}
		return nil, err
	}
	return transactionToResponse(t), nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	txns, total, err := s.txns.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, *transactionToResponse(&txns[i]))
	}
	return &dto.TransactionListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// publish is best effort: a dead broker must never fail a committed
// ledger operation.
func (s *ledgerService) publish(ctx context.Context, t *model.Transaction) {
	if s.publisher == nil {
		return
	}
	evt := events.TransactionCompleted{
		TransactionID: t.ID.String(),
		Type:          t.Type,
		Amount:        t.Amount,
		AccountID:     t.AccountID.String(),
		Category:      t.Category,
		OccurredAt:    t.CreatedAt,
	}
	if t.ToAccountID != nil {
		to := t.ToAccountID.String()
		evt.ToAccountID = &to
	}
	if err := s.publisher.PublishTransactionCompleted(ctx, evt); err != nil {
		log.Error().Err(err).Str("transaction_id", evt.TransactionID).Msg("event publish failed")
	}
}

// ── Mappers ──────────────────────────────────────────────────────────────────

func accountToResponse(a *model.Account) *dto.AccountResponse {
	return &dto.AccountResponse{
		ID:            a.ID.String(),
		Name:          a.Name,
		Type:          a.Type,
		Balance:       a.Balance,
		Currency:      a.Currency,
		PaymentMethod: a.PaymentMethod,
		IsDefault:     a.IsDefault,
	}
}

func transactionToResponse(t *model.Transaction) *dto.TransactionResponse {
	resp := &dto.TransactionResponse{
		ID:          t.ID.String(),
		Type:        t.Type,
		Amount:      t.Amount,
		AccountID:   t.AccountID.String(),
		Category:    t.Category,
		Description: t.Description,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if t.ToAccountID != nil {
		to := t.ToAccountID.String()
		resp.ToAccountID = &to
	}
	return resp
}

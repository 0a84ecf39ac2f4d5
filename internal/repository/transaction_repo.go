package repository

import (
	"context"
	"time"

	"bizledger/internal/dto"
	"bizledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionRepository is append-only on purpose: the movement log has
// no Update or Delete.
type TransactionRepository interface {
	CreateTx(tx *gorm.DB, t *model.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	List(ctx context.Context, filter dto.TransactionFilter) ([]model.Transaction, int64, error)
	// ListBetween returns all transactions in [from, to), oldest first.
	// Reporting folds run over this snapshot.
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Transaction, error)
	DB() *gorm.DB
}

type transactionRepo struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) CreateTx(tx *gorm.DB, t *model.Transaction) error {
	return tx.Create(t).Error
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).Preload("Account").Preload("ToAccount").First(&t, "id = ?", id).Error
	return &t, err
}

func (r *transactionRepo) List(ctx context.Context, filter dto.TransactionFilter) ([]model.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Transaction{})

	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.AccountID != "" {
		q = q.Where("account_id = ? OR to_account_id = ?", filter.AccountID, filter.AccountID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.From != "" {
		q = q.Where("created_at >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("created_at < ?", filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var txs []model.Transaction
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&txs).Error
	return txs, total, err
}

func (r *transactionRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepo) DB() *gorm.DB { return r.db }

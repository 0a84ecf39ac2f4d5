package repository

import (
	"context"

	"bizledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreditTransactionRepository is append-only: audit rows are never
// updated or deleted.
type CreditTransactionRepository interface {
	CreateTx(tx *gorm.DB, ct *model.CreditTransaction) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.CreditTransaction, error)
}

type creditTransactionRepo struct{ db *gorm.DB }

func NewCreditTransactionRepository(db *gorm.DB) CreditTransactionRepository {
	return &creditTransactionRepo{db: db}
}

func (r *creditTransactionRepo) CreateTx(tx *gorm.DB, ct *model.CreditTransaction) error {
	return tx.Create(ct).Error
}

func (r *creditTransactionRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.CreditTransaction, error) {
	var rows []model.CreditTransaction
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

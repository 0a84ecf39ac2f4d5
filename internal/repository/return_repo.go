package repository

import (
	"context"

	"bizledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReturnRepository interface {
	CreateTx(tx *gorm.DB, ret *model.Return) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Return, error)
	// ListBySale returns all returns already processed against a sale,
	// items included. The over-return guard folds over these.
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]model.Return, error)
	// ListBySaleTx is the in-transaction variant: the fold must run while
	// the sale row is locked or two concurrent returns both pass it.
	ListBySaleTx(tx *gorm.DB, saleID uuid.UUID) ([]model.Return, error)
}

type returnRepo struct{ db *gorm.DB }

func NewReturnRepository(db *gorm.DB) ReturnRepository { return &returnRepo{db: db} }

func (r *returnRepo) CreateTx(tx *gorm.DB, ret *model.Return) error {
	return tx.Create(ret).Error
}

func (r *returnRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Return, error) {
	var ret model.Return
	err := r.db.WithContext(ctx).Preload("Items").First(&ret, "id = ?", id).Error
	return &ret, err
}

func (r *returnRepo) ListBySale(ctx context.Context, saleID uuid.UUID) ([]model.Return, error) {
	var rets []model.Return
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Preload("Items").
		Order("created_at ASC").
		Find(&rets).Error
	return rets, err
}

func (r *returnRepo) ListBySaleTx(tx *gorm.DB, saleID uuid.UUID) ([]model.Return, error) {
	var rets []model.Return
	err := tx.Where("sale_id = ?", saleID).
		Preload("Items").
		Order("created_at ASC").
		Find(&rets).Error
	return rets, err
}

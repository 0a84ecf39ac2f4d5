package repository

import (
	"context"
	"time"

	"bizledger/internal/dto"
	"bizledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Sale, error)
	// LockByIDTx reads the sale row under a row lock. Void and return
	// guards re-check status and prior returns while holding it. Items
	// are not loaded; they never change after checkout.
	LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	// UpdateStatusTx flips the status only when the current value still
	// matches from; gorm.ErrRecordNotFound when another writer got there
	// first.
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to string) error
	// LinkTransactionTx points the sale at the income transaction recorded
	// for it during checkout.
	LinkTransactionTx(tx *gorm.DB, id uuid.UUID, transactionID uuid.UUID) error
	// NextNumberTx allocates the next receipt number inside the checkout
	// transaction.
	NextNumberTx(tx *gorm.DB) (int, error)
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Customer").
		First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		day, err := time.Parse("2006-01-02", filter.Date)
		if err == nil {
			q = q.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
		}
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var sales []model.Sale
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Preload("Items").
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to string) error {
	return checkAffected(tx.Model(&model.Sale{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to))
}

func (r *saleRepo) LinkTransactionTx(tx *gorm.DB, id uuid.UUID, transactionID uuid.UUID) error {
	return checkAffected(tx.Model(&model.Sale{}).Where("id = ?", id).
		Update("transaction_id", transactionID))
}

func (r *saleRepo) NextNumberTx(tx *gorm.DB) (int, error) {
	// MAX+1 under the checkout transaction. Works on both postgres and
	// sqlite; the unique index on number catches the rare collision.
	var num int
	err := tx.Model(&model.Sale{}).Select("COALESCE(MAX(number), 0) + 1").Scan(&num).Error
	return num, err
}

func (r *saleRepo) DB() *gorm.DB { return r.db }

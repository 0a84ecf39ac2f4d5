package repository

import (
	"context"
	"time"

	"bizledger/internal/dto"
	"bizledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, filter dto.CustomerFilter) ([]model.Customer, int64, error)
	ListAll(ctx context.Context) ([]model.Customer, error)
	Update(ctx context.Context, c *model.Customer) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// LockByIDTx reads the customer under a row lock; credit mutations
	// serialize on it.
	LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Customer, error)
	UpdateBalanceTx(tx *gorm.DB, id uuid.UUID, balance decimal.Decimal) error
	// UpdatePurchaseStatsTx bumps purchase counters after a completed sale.
	UpdatePurchaseStatsTx(tx *gorm.DB, id uuid.UUID, total decimal.Decimal, at time.Time) error

	DB() *gorm.DB
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *customerRepo) List(ctx context.Context, filter dto.CustomerFilter) ([]model.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Customer{}).Where("active = true")

	if filter.Name != "" {
		q = q.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Email != "" {
		q = q.Where("email = ?", filter.Email)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var customers []model.Customer
	err := q.Order("name ASC").Offset(offset).Limit(filter.Limit).Find(&customers).Error
	return customers, total, err
}

func (r *customerRepo) ListAll(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.WithContext(ctx).Where("active = true").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) Update(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *customerRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Customer{}).Where("id = ?", id).Update("active", false).Error
}

func (r *customerRepo) LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *customerRepo) UpdateBalanceTx(tx *gorm.DB, id uuid.UUID, balance decimal.Decimal) error {
	return checkAffected(tx.Model(&model.Customer{}).Where("id = ?", id).
		Update("outstanding_balance", balance))
}

func (r *customerRepo) UpdatePurchaseStatsTx(tx *gorm.DB, id uuid.UUID, total decimal.Decimal, at time.Time) error {
	updates := map[string]interface{}{
		"total_purchases":  gorm.Expr("total_purchases + 1"),
		"total_spent":      gorm.Expr("total_spent + ?", total),
		"last_purchase_at": at,
	}
	if err := checkAffected(tx.Model(&model.Customer{}).Where("id = ?", id).Updates(updates)); err != nil {
		return err
	}
	// First purchase timestamp is set once and never moves.
	return tx.Model(&model.Customer{}).
		Where("id = ? AND first_purchase_at IS NULL", id).
		Update("first_purchase_at", at).Error
}

func (r *customerRepo) DB() *gorm.DB { return r.db }

package repository

import (
	"context"

	"bizledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository defines data access for financial accounts.
// Services depend on this interface, not on the concrete GORM
// implementation, so unit tests can swap in in-memory stubs.
type AccountRepository interface {
	Create(ctx context.Context, a *model.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	FindByName(ctx context.Context, name string) (*model.Account, error)
	// FindByPaymentMethod resolves the settlement account for a checkout
	// payment method (cash/card/mobile/credit).
	FindByPaymentMethod(ctx context.Context, method string) (*model.Account, error)
	List(ctx context.Context) ([]model.Account, error)
	Update(ctx context.Context, a *model.Account) error

	// Used inside transactions — callers must pass the tx instance.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Account, error)
	// AdjustBalanceTx applies a signed delta as an atomic SQL increment,
	// never a read-modify-write overwrite.
	AdjustBalanceTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type accountRepo struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) AccountRepository { return &accountRepo{db: db} }

func (r *accountRepo) Create(ctx context.Context, a *model.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *accountRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var a model.Account
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *accountRepo) FindByName(ctx context.Context, name string) (*model.Account, error) {
	var a model.Account
	err := r.db.WithContext(ctx).Where("name = ? AND active = true", name).First(&a).Error
	return &a, err
}

func (r *accountRepo) FindByPaymentMethod(ctx context.Context, method string) (*model.Account, error) {
	var a model.Account
	err := r.db.WithContext(ctx).
		Where("payment_method = ? AND active = true", method).
		Order("is_default DESC").
		First(&a).Error
	return &a, err
}

func (r *accountRepo) List(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.WithContext(ctx).Where("active = true").Order("name ASC").Find(&accounts).Error
	return accounts, err
}

func (r *accountRepo) Update(ctx context.Context, a *model.Account) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *accountRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Account, error) {
	var a model.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *accountRepo) AdjustBalanceTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	return checkAffected(tx.Model(&model.Account{}).Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", delta)))
}

func (r *accountRepo) DB() *gorm.DB { return r.db }

package service

// In-memory repository stubs. Services open transactions through the
// repositories' DB() handle; the stubs return nil there, which makes
// runTx call the workflow body directly.

import (
	"context"
	"testing"
	"time"

	"bizledger/internal/dto"
	"bizledger/internal/model"
	"bizledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newUUID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

func mustParseUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("invalid uuid %q: %v", s, err)
	}
	return id
}

// ── Accounts ─────────────────────────────────────────────────────────────────

type stubAccountRepo struct {
	accounts map[uuid.UUID]*model.Account
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[uuid.UUID]*model.Account)}
}

func (r *stubAccountRepo) add(a *model.Account) *model.Account {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Active = true
	r.accounts[a.ID] = a
	return a
}

func (r *stubAccountRepo) Create(_ context.Context, a *model.Account) error {
	r.add(a)
	return nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubAccountRepo) FindByName(_ context.Context, name string) (*model.Account, error) {
	for _, a := range r.accounts {
		if a.Name == name && a.Active {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubAccountRepo) FindByPaymentMethod(_ context.Context, method string) (*model.Account, error) {
	for _, a := range r.accounts {
		if a.Active && a.PaymentMethod != nil && *a.PaymentMethod == method {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubAccountRepo) List(_ context.Context) ([]model.Account, error) {
	out := make([]model.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (r *stubAccountRepo) Update(_ context.Context, a *model.Account) error {
	r.accounts[a.ID] = a
	return nil
}

func (r *stubAccountRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Account, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubAccountRepo) AdjustBalanceTx(_ *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	a, ok := r.accounts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Balance = a.Balance.Add(delta)
	return nil
}

func (r *stubAccountRepo) DB() *gorm.DB { return nil }

// ── Transactions ─────────────────────────────────────────────────────────────

type stubTransactionRepo struct {
	rows []*model.Transaction
}

func newStubTransactionRepo() *stubTransactionRepo { return &stubTransactionRepo{} }

func (r *stubTransactionRepo) CreateTx(_ *gorm.DB, t *model.Transaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	r.rows = append(r.rows, t)
	return nil
}

func (r *stubTransactionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	for _, t := range r.rows {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTransactionRepo) List(_ context.Context, filter dto.TransactionFilter) ([]model.Transaction, int64, error) {
	out := make([]model.Transaction, 0, len(r.rows))
	for _, t := range r.rows {
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *stubTransactionRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, t := range r.rows {
		if !t.CreatedAt.Before(from) && t.CreatedAt.Before(to) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubTransactionRepo) DB() *gorm.DB { return nil }

// ── Products ─────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Active = true
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.add(p)
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku && p.Active {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	out, _ := r.ListAll(context.Background())
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) ListAll(_ context.Context) ([]model.Product, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) ListLowStock(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Active && p.LowStock {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *stubProductRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = true
	}
	return nil
}

func (r *stubProductRepo) LockByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	// Return a detached copy, like a real gorm locked read scanning into a
	// fresh struct; otherwise UpdateStockTx mutates the caller's snapshot.
	p, err := r.FindByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, newStock int, lowStock bool) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock = newStock
	p.LowStock = lowStock
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

// ── Stock movements ──────────────────────────────────────────────────────────

type stubStockMovementRepo struct {
	rows []*model.StockMovement
}

func newStubStockMovementRepo() *stubStockMovementRepo { return &stubStockMovementRepo{} }

func (r *stubStockMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.rows = append(r.rows, m)
	return nil
}

func (r *stubStockMovementRepo) List(_ context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.rows {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Reason != "" && m.Reason != filter.Reason {
			continue
		}
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

func (r *stubStockMovementRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.rows {
		if m.ProductID == productID {
			out = append(out, *m)
		}
	}
	return out, nil
}

// ── Customers ────────────────────────────────────────────────────────────────

type stubCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) add(c *model.Customer) *model.Customer {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Active = true
	r.customers[c.ID] = c
	return c
}

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	r.add(c)
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCustomerRepo) List(_ context.Context, _ dto.CustomerFilter) ([]model.Customer, int64, error) {
	out, _ := r.ListAll(context.Background())
	return out, int64(len(out)), nil
}

func (r *stubCustomerRepo) ListAll(_ context.Context) ([]model.Customer, error) {
	out := make([]model.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		if c.Active {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *stubCustomerRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if c, ok := r.customers[id]; ok {
		c.Active = false
	}
	return nil
}

func (r *stubCustomerRepo) LockByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubCustomerRepo) UpdateBalanceTx(_ *gorm.DB, id uuid.UUID, balance decimal.Decimal) error {
	c, ok := r.customers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.OutstandingBalance = balance
	return nil
}

func (r *stubCustomerRepo) UpdatePurchaseStatsTx(_ *gorm.DB, id uuid.UUID, total decimal.Decimal, at time.Time) error {
	c, ok := r.customers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.TotalPurchases++
	c.TotalSpent = c.TotalSpent.Add(total)
	if c.FirstPurchaseAt == nil {
		first := at
		c.FirstPurchaseAt = &first
	}
	last := at
	c.LastPurchaseAt = &last
	return nil
}

func (r *stubCustomerRepo) DB() *gorm.DB { return nil }

// ── Credit transactions ──────────────────────────────────────────────────────

type stubCreditTransactionRepo struct {
	rows []*model.CreditTransaction
}

func newStubCreditTransactionRepo() *stubCreditTransactionRepo {
	return &stubCreditTransactionRepo{}
}

func (r *stubCreditTransactionRepo) CreateTx(_ *gorm.DB, ct *model.CreditTransaction) error {
	if ct.ID == uuid.Nil {
		ct.ID = uuid.New()
	}
	ct.CreatedAt = time.Now()
	r.rows = append(r.rows, ct)
	return nil
}

func (r *stubCreditTransactionRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]model.CreditTransaction, error) {
	var out []model.CreditTransaction
	for _, ct := range r.rows {
		if ct.CustomerID == customerID {
			out = append(out, *ct)
		}
	}
	return out, nil
}

// ── Sales ────────────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales map[uuid.UUID]*model.Sale

	// beforeLock, when set, runs as LockByIDTx acquires the row. Tests
	// use it to mutate state the way a concurrent writer would have
	// committed just before the lock was granted.
	beforeLock func()
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) add(s *model.Sale) *model.Sale {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sales[s.ID] = s
	return s
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	r.add(s)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	for i := range s.Items {
		if s.Items[i].ID == uuid.Nil {
			s.Items[i].ID = uuid.New()
		}
		s.Items[i].SaleID = s.ID
	}
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSaleRepo) List(_ context.Context, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	out := make([]model.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if !s.CreatedAt.Before(from) && s.CreatedAt.Before(to) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) LockByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	if r.beforeLock != nil {
		r.beforeLock()
	}
	return r.FindByID(context.Background(), id)
}

func (r *stubSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, from, to string) error {
	s, ok := r.sales[id]
	if !ok || s.Status != from {
		return gorm.ErrRecordNotFound
	}
	s.Status = to
	return nil
}

func (r *stubSaleRepo) LinkTransactionTx(_ *gorm.DB, id uuid.UUID, transactionID uuid.UUID) error {
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.TransactionID = &transactionID
	return nil
}

func (r *stubSaleRepo) NextNumberTx(_ *gorm.DB) (int, error) {
	max := 0
	for _, s := range r.sales {
		if s.Number > max {
			max = s.Number
		}
	}
	return max + 1, nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

// ── Returns ──────────────────────────────────────────────────────────────────

type stubReturnRepo struct {
	rows []*model.Return
}

func newStubReturnRepo() *stubReturnRepo { return &stubReturnRepo{} }

func (r *stubReturnRepo) CreateTx(_ *gorm.DB, ret *model.Return) error {
	if ret.ID == uuid.Nil {
		ret.ID = uuid.New()
	}
	ret.CreatedAt = time.Now()
	for i := range ret.Items {
		if ret.Items[i].ID == uuid.Nil {
			ret.Items[i].ID = uuid.New()
		}
		ret.Items[i].ReturnID = ret.ID
	}
	r.rows = append(r.rows, ret)
	return nil
}

func (r *stubReturnRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Return, error) {
	for _, ret := range r.rows {
		if ret.ID == id {
			return ret, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubReturnRepo) ListBySale(_ context.Context, saleID uuid.UUID) ([]model.Return, error) {
	var out []model.Return
	for _, ret := range r.rows {
		if ret.SaleID == saleID {
			out = append(out, *ret)
		}
	}
	return out, nil
}

func (r *stubReturnRepo) ListBySaleTx(_ *gorm.DB, saleID uuid.UUID) ([]model.Return, error) {
	return r.ListBySale(context.Background(), saleID)
}

// ── Audit log ────────────────────────────────────────────────────────────────

type stubAuditLogRepo struct {
	entries []*model.AuditLog
}

func newStubAuditLogRepo() *stubAuditLogRepo { return &stubAuditLogRepo{} }

func (r *stubAuditLogRepo) Create(_ context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *stubAuditLogRepo) List(_ context.Context, _ int) ([]model.AuditLog, error) {
	out := make([]model.AuditLog, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	return out, nil
}

// Compile-time interface checks.
var (
	_ repository.AccountRepository           = (*stubAccountRepo)(nil)
	_ repository.TransactionRepository       = (*stubTransactionRepo)(nil)
	_ repository.ProductRepository           = (*stubProductRepo)(nil)
	_ repository.StockMovementRepository     = (*stubStockMovementRepo)(nil)
	_ repository.CustomerRepository          = (*stubCustomerRepo)(nil)
	_ repository.CreditTransactionRepository = (*stubCreditTransactionRepo)(nil)
	_ repository.SaleRepository              = (*stubSaleRepo)(nil)
	_ repository.ReturnRepository            = (*stubReturnRepo)(nil)
	_ repository.AuditLogRepository          = (*stubAuditLogRepo)(nil)
)

// ── Receipt queue ────────────────────────────────────────────────────────────

type stubReceiptQueue struct {
	saleIDs []uuid.UUID
	emails  []*string
}

func (q *stubReceiptQueue) EnqueueReceipt(_ context.Context, saleID uuid.UUID, email *string) error {
	q.saleIDs = append(q.saleIDs, saleID)
	q.emails = append(q.emails, email)
	return nil
}

var _ ReceiptQueue = (*stubReceiptQueue)(nil)

package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bizledger/internal/dto"
	"bizledger/internal/model"
	"bizledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportService computes aggregates by folding over the committed
// transaction, sale and customer rows. Read-only; no report mutates state.
type ReportService interface {
	DailySummary(ctx context.Context, date time.Time) (*dto.DailySummaryResponse, error)
	ProfitAndLoss(ctx context.Context, from, to time.Time) (*dto.ProfitAndLossResponse, error)
	CashFlow(ctx context.Context, from, to time.Time) (*dto.CashFlowResponse, error)
	StockValue(ctx context.Context) (*dto.StockValueResponse, error)
	CustomerSegments(ctx context.Context) (*dto.CustomerSegmentsResponse, error)
}

type reportService struct {
	txns      repository.TransactionRepository
	sales     repository.SaleRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	// vipThreshold is the annualized lifetime value above which a customer
	// with ten or more purchases counts as VIP.
	vipThreshold decimal.Decimal
	now          func() time.Time
}

func NewReportService(
	txns repository.TransactionRepository,
	sales repository.SaleRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	vipThreshold decimal.Decimal,
) ReportService {
	if vipThreshold.IsZero() {
		vipThreshold = decimal.NewFromInt(1000)
	}
	return &reportService{
		txns:         txns,
		sales:        sales,
		products:     products,
		customers:    customers,
		vipThreshold: vipThreshold,
		now:          time.Now,
	}
}

// ── Daily summary ────────────────────────────────────────────────────────────

func (s *reportService) DailySummary(ctx context.Context, date time.Time) (*dto.DailySummaryResponse, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	next := day.AddDate(0, 0, 1)

	sales, err := s.sales.ListBetween(ctx, day, next)
	if err != nil {
		return nil, err
	}
	salesCount := 0
	salesTotal := decimal.Zero
	for i := range sales {
		if sales[i].Status != model.SaleCompleted {
			continue
		}
		salesCount++
		salesTotal = salesTotal.Add(sales[i].Total)
	}

	txns, err := s.txns.ListBetween(ctx, day, next)
	if err != nil {
		return nil, err
	}
	income := decimal.Zero
	expense := decimal.Zero
	for i := range txns {
		switch txns[i].Type {
		case model.TxIncome:
			income = income.Add(txns[i].Amount)
		case model.TxExpense:
			expense = expense.Add(txns[i].Amount)
			// Transfers move money between accounts; they are neither
			// income nor expense for the business.
		}
	}

	return &dto.DailySummaryResponse{
		Date:         day.Format("2006-01-02"),
		SalesCount:   salesCount,
		SalesTotal:   salesTotal,
		TotalIncome:  income,
		TotalExpense: expense,
		Net:          income.Sub(expense),
	}, nil
}

// ── Profit and loss ──────────────────────────────────────────────────────────

func (s *reportService) ProfitAndLoss(ctx context.Context, from, to time.Time) (*dto.ProfitAndLossResponse, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: report window must not be empty", ErrValidation)
	}

	txns, err := s.txns.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	income := decimal.Zero
	expense := decimal.Zero
	for i := range txns {
		switch txns[i].Type {
		case model.TxIncome:
			income = income.Add(txns[i].Amount)
		case model.TxExpense:
			expense = expense.Add(txns[i].Amount)
		}
	}

	// Cost of goods: sold units priced at product cost. Item rows snapshot
	// the sale price; cost comes from the product record.
	cogs, err := s.costOfGoods(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &dto.ProfitAndLossResponse{
		From:         from.Format("2006-01-02"),
		To:           to.Format("2006-01-02"),
		TotalIncome:  income,
		CostOfGoods:  cogs,
		GrossProfit:  income.Sub(cogs),
		TotalExpense: expense,
		NetProfit:    income.Sub(cogs).Sub(expense),
	}, nil
}

func (s *reportService) costOfGoods(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	sales, err := s.sales.ListBetween(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	costByID := make(map[uuid.UUID]decimal.Decimal, len(products))
	for i := range products {
		costByID[products[i].ID] = products[i].Cost
	}

	cogs := decimal.Zero
	for i := range sales {
		if sales[i].Status != model.SaleCompleted {
			continue
		}
		for j := range sales[i].Items {
			item := &sales[i].Items[j]
			cost, ok := costByID[item.ProductID]
			if !ok {
				continue
			}
			cogs = cogs.Add(cost.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	return cogs, nil
}

// ── Cash flow ────────────────────────────────────────────────────────────────

func (s *reportService) CashFlow(ctx context.Context, from, to time.Time) (*dto.CashFlowResponse, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: report window must not be empty", ErrValidation)
	}

	txns, err := s.txns.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	type flow struct{ in, out decimal.Decimal }
	perAccount := make(map[uuid.UUID]*flow)
	get := func(id uuid.UUID) *flow {
		f, ok := perAccount[id]
		if !ok {
			f = &flow{in: decimal.Zero, out: decimal.Zero}
			perAccount[id] = f
		}
		return f
	}

	inflow := decimal.Zero
	outflow := decimal.Zero
	for i := range txns {
		t := &txns[i]
		switch t.Type {
		case model.TxIncome:
			inflow = inflow.Add(t.Amount)
			f := get(t.AccountID)
			f.in = f.in.Add(t.Amount)
		case model.TxExpense:
			outflow = outflow.Add(t.Amount)
			f := get(t.AccountID)
			f.out = f.out.Add(t.Amount)
		case model.TxTransfer:
			// Internal movement: per-account flows change, totals do not.
			src := get(t.AccountID)
			src.out = src.out.Add(t.Amount)
			if t.ToAccountID != nil {
				dst := get(*t.ToAccountID)
				dst.in = dst.in.Add(t.Amount)
			}
		}
	}

	accounts := make([]dto.CashFlowAccount, 0, len(perAccount))
	for id, f := range perAccount {
		accounts = append(accounts, dto.CashFlowAccount{
			AccountID: id.String(),
			Inflow:    f.in,
			Outflow:   f.out,
			Net:       f.in.Sub(f.out),
		})
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].AccountID < accounts[j].AccountID })

	return &dto.CashFlowResponse{
		From:     from.Format("2006-01-02"),
		To:       to.Format("2006-01-02"),
		Inflow:   inflow,
		Outflow:  outflow,
		Net:      inflow.Sub(outflow),
		Accounts: accounts,
	}, nil
}

// ── Stock value ──────────────────────────────────────────────────────────────

func (s *reportService) StockValue(ctx context.Context) (*dto.StockValueResponse, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	units := 0
	value := decimal.Zero
	for i := range products {
		units += products[i].Stock
		value = value.Add(products[i].Cost.Mul(decimal.NewFromInt(int64(products[i].Stock))))
	}
	return &dto.StockValueResponse{
		Products:   len(products),
		Units:      units,
		TotalValue: value,
	}, nil
}

// ── Customer segments ────────────────────────────────────────────────────────

func (s *reportService) CustomerSegments(ctx context.Context) (*dto.CustomerSegmentsResponse, error) {
	customers, err := s.customers.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	counts := map[string]int{
		dto.SegmentNew:     0,
		dto.SegmentOneTime: 0,
		dto.SegmentRepeat:  0,
		dto.SegmentLoyal:   0,
		dto.SegmentVIP:     0,
	}
	data := make([]dto.CustomerSegment, 0, len(customers))
	for i := range customers {
		c := &customers[i]
		clv := lifetimeValue(c, now)
		segment := segmentFor(c, clv, s.vipThreshold)
		counts[segment]++
		data = append(data, dto.CustomerSegment{
			CustomerID:    c.ID.String(),
			Name:          c.Name,
			Segment:       segment,
			Purchases:     c.TotalPurchases,
			TotalSpent:    c.TotalSpent,
			LifetimeValue: clv,
		})
	}
	sort.Slice(data, func(i, j int) bool {
		return data[i].LifetimeValue.GreaterThan(data[j].LifetimeValue)
	})

	return &dto.CustomerSegmentsResponse{Segments: counts, Data: data}, nil
}

// lifetimeValue annualizes total spend over the customer's tenure:
// total spent divided by months since first purchase, times twelve.
// Tenure shorter than one month counts as one month.
func lifetimeValue(c *model.Customer, now time.Time) decimal.Decimal {
	if c.FirstPurchaseAt == nil || c.TotalSpent.IsZero() {
		return decimal.Zero
	}
	months := now.Sub(*c.FirstPurchaseAt).Hours() / (24 * 30)
	if months < 1 {
		months = 1
	}
	return c.TotalSpent.
		Div(decimal.NewFromFloat(months)).
		Mul(decimal.NewFromInt(12)).
		Round(2)
}

func segmentFor(c *model.Customer, clv, vipThreshold decimal.Decimal) string {
	switch {
	case c.TotalPurchases >= 10 && clv.GreaterThanOrEqual(vipThreshold):
		return dto.SegmentVIP
	case c.TotalPurchases >= 5:
		return dto.SegmentLoyal
	case c.TotalPurchases >= 2:
		return dto.SegmentRepeat
	case c.TotalPurchases == 1:
		return dto.SegmentOneTime
	default:
		return dto.SegmentNew
	}
}

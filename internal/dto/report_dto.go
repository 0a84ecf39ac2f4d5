package dto

import "github.com/shopspring/decimal"

// DailySummaryResponse aggregates one calendar day of ledger activity.
type DailySummaryResponse struct {
	Date         string          `json:"date"`
	SalesCount   int             `json:"sales_count"`
	SalesTotal   decimal.Decimal `json:"sales_total"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Net          decimal.Decimal `json:"net"`
}

// ProfitAndLossResponse: gross profit strips cost of goods from income;
// net profit additionally strips every other expense.
type ProfitAndLossResponse struct {
	From         string          `json:"from"`
	To           string          `json:"to"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	CostOfGoods  decimal.Decimal `json:"cost_of_goods"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetProfit    decimal.Decimal `json:"net_profit"`
}

type CashFlowAccount struct {
	AccountID string          `json:"account_id"`
	Inflow    decimal.Decimal `json:"inflow"`
	Outflow   decimal.Decimal `json:"outflow"`
	Net       decimal.Decimal `json:"net"`
}

type CashFlowResponse struct {
	From     string            `json:"from"`
	To       string            `json:"to"`
	Inflow   decimal.Decimal   `json:"inflow"`
	Outflow  decimal.Decimal   `json:"outflow"`
	Net      decimal.Decimal   `json:"net"`
	Accounts []CashFlowAccount `json:"accounts"`
}

type StockValueResponse struct {
	Products   int             `json:"products"`
	Units      int             `json:"units"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// Customer segments ordered by engagement.
const (
	SegmentNew     = "New"
	SegmentOneTime = "One-time"
	SegmentRepeat  = "Repeat"
	SegmentLoyal   = "Loyal"
	SegmentVIP     = "VIP"
)

type CustomerSegment struct {
	CustomerID    string          `json:"customer_id"`
	Name          string          `json:"name"`
	Segment       string          `json:"segment"`
	Purchases     int             `json:"purchases"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	LifetimeValue decimal.Decimal `json:"lifetime_value"`
}

type CustomerSegmentsResponse struct {
	Segments map[string]int    `json:"segments"`
	Data     []CustomerSegment `json:"data"`
}

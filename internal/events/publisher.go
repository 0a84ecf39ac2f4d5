package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCompleted is emitted after a ledger transaction commits.
// Downstream consumers (accounting exports, dashboards) subscribe to it.
type TransactionCompleted struct {
	TransactionID string          `json:"transaction_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	AccountID     string          `json:"account_id"`
	ToAccountID   *string         `json:"to_account_id,omitempty"`
	Category      string          `json:"category"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type Publisher interface {
	PublishTransactionCompleted(ctx context.Context, evt TransactionCompleted) error
	Close() error
}

// Noop is used when no broker is configured.
type Noop struct{}

func (Noop) PublishTransactionCompleted(context.Context, TransactionCompleted) error { return nil }
func (Noop) Close() error                                                            { return nil }

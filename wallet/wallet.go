// Package wallet is the client of the seamless wallet service that holds
// player funds. Every call is synchronous; only StatusSuccess means the
// wallet applied it.
package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// StatusSuccess is the only status code meaning the wallet applied a call.
const StatusSuccess = 2100

// ErrRejected is returned when the wallet answered with any other status.
var ErrRejected = errors.New("wallet: call rejected")

type Request struct {
	// Operator identifies the provider credentials the call is made under.
	Operator      string          `json:"operator"`
	Provider      string          `json:"provider"`
	PlayerID      string          `json:"player_id"`
	Currency      string          `json:"currency"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Time          time.Time       `json:"time"`
}

type Result struct {
	StatusCode int             `json:"status_code"`
	Credit     decimal.Decimal `json:"credit"`
	Message    string          `json:"message,omitempty"`
}

func (r Result) OK() bool { return r.StatusCode == StatusSuccess }

// Gateway is the set of wallet operations the ledger drives. Amounts are in
// ledger units; Resettle amounts are signed.
type Gateway interface {
	Balance(ctx context.Context, req Request) (Result, error)
	Wager(ctx context.Context, req Request) (Result, error)
	Payout(ctx context.Context, req Request) (Result, error)
	Resettle(ctx context.Context, req Request) (Result, error)
	TransferIn(ctx context.Context, req Request) (Result, error)
	TransferOut(ctx context.Context, req Request) (Result, error)
}

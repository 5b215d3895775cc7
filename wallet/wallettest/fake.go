// Package wallettest provides an in-memory wallet gateway for tests.
package wallettest

import (
	"context"
	"fmt"
	"sync"

	"sportsledger/wallet"

	"github.com/shopspring/decimal"
)

// Call is one recorded gateway call.
type Call struct {
	Op     string
	Amount decimal.Decimal
	Ref    string
}

// Fake keeps a single balance and records every call.
type Fake struct {
	mu      sync.Mutex
	balance decimal.Decimal
	calls   []Call
	reject  map[string]bool
}

func New(balance decimal.Decimal) *Fake {
	return &Fake{balance: balance, reject: map[string]bool{}}
}

// Reject makes op answer with a non-success status until cleared.
func (f *Fake) Reject(op string, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reject[op] = on
}

func (f *Fake) Current() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance
}

func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Mutations lists the money-moving calls, skipping balance reads.
func (f *Fake) Mutations() []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Op != "balance" {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) do(op string, req wallet.Request, delta decimal.Decimal) (wallet.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: op, Amount: req.Amount, Ref: req.Reference})
	if f.reject[op] {
		return wallet.Result{StatusCode: 2101, Message: "rejected"}, fmt.Errorf("wallet %s: %w", op, wallet.ErrRejected)
	}
	f.balance = f.balance.Add(delta)
	return wallet.Result{StatusCode: wallet.StatusSuccess, Credit: f.balance}, nil
}

func (f *Fake) Balance(_ context.Context, r wallet.Request) (wallet.Result, error) {
	return f.do("balance", r, decimal.Zero)
}

func (f *Fake) Wager(_ context.Context, r wallet.Request) (wallet.Result, error) {
	return f.do("wager", r, r.Amount.Neg())
}

func (f *Fake) Payout(_ context.Context, r wallet.Request) (wallet.Result, error) {
	return f.do("payout", r, r.Amount)
}

func (f *Fake) Resettle(_ context.Context, r wallet.Request) (wallet.Result, error) {
	return f.do("resettle", r, r.Amount)
}

func (f *Fake) TransferIn(_ context.Context, r wallet.Request) (wallet.Result, error) {
	return f.do("transferIn", r, r.Amount)
}

func (f *Fake) TransferOut(_ context.Context, r wallet.Request) (wallet.Result, error) {
	return f.do("transferOut", r, r.Amount.Neg())
}

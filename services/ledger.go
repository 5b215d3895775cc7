package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sportsledger/config"
	"sportsledger/ledger"
	"sportsledger/logger"
	"sportsledger/metrics"
	"sportsledger/models"
	"sportsledger/providers"
	"sportsledger/store"
	"sportsledger/wallet"

	"github.com/shopspring/decimal"
)

// WagerRepository is the record store the orchestrators drive.
type WagerRepository interface {
	GetActiveByTransactionID(ctx context.Context, transactionID string) (*models.WagerRecord, error)
	CountByPrefix(ctx context.Context, prefix ledger.Prefix, transactionID string) (int64, error)
	LatestSettlement(ctx context.Context, transactionID string) (*models.WagerRecord, error)
	SumWaitingStakes(ctx context.Context, playerID, currency string) (decimal.Decimal, error)
	Insert(ctx context.Context, rec *models.WagerRecord, supersede *models.WagerRecord) error
}

type PlayerRepository interface {
	FindPlayer(ctx context.Context, userCode string) (*models.Player, error)
}

type LedgerOptions struct {
	Provider config.ProviderConfig
	Wagers   WagerRepository
	Players  PlayerRepository
	Wallet   wallet.Gateway
	// Detail enriches settlements; nil disables enrichment.
	Detail   providers.BetDetailer
	Location *time.Location
	Now      func() time.Time
}

// Ledger runs the wager lifecycle of one provider against the wallet.
type Ledger struct {
	provider config.ProviderConfig
	wagers   WagerRepository
	players  PlayerRepository
	wallet   wallet.Gateway
	detail   providers.BetDetailer
	loc      *time.Location
	now      func() time.Time
}

func NewLedger(opts LedgerOptions) *Ledger {
	l := &Ledger{
		provider: opts.Provider,
		wagers:   opts.Wagers,
		players:  opts.Players,
		wallet:   opts.Wallet,
		detail:   opts.Detail,
		loc:      opts.Location,
		now:      opts.Now,
	}
	if l.loc == nil {
		l.loc = ledger.ReferenceZone
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

func (l *Ledger) Provider() string { return l.provider.Name }

// Caller identifies who an inbound event is for and the key it was signed
// with.
type Caller struct {
	Key      string
	PlayerID string
}

// Result is what a handled event reports back. Balance is in provider units.
type Result struct {
	Balance  decimal.Decimal
	Currency string
	Record   *models.WagerRecord
}

type PlaceRequest struct {
	Caller
	TransactionID string
	OperationID   string
	Category      string
	Legs          []ledger.Leg
	// Amount is the stake in provider units when the legs carry none.
	Amount    decimal.Decimal
	BetTime   time.Time
	ExtraInfo json.RawMessage
}

type ConfirmRequest struct {
	Caller
	TransactionID string
	OperationID   string
	ActualStake   decimal.Decimal
	ExtraInfo     json.RawMessage
}

type CancelRequest struct {
	Caller
	TransactionID string
	OperationID   string
}

type SettleRequest struct {
	Caller
	TransactionID string
	OperationID   string
	Payout        decimal.Decimal
	CashOut       bool
	Void          bool
	// Enrich fetches leg-level detail from the provider before settling.
	Enrich    bool
	ExtraInfo json.RawMessage
}

type AdjustRequest struct {
	Caller
	TransactionID string
	OperationID   string
	Credit        decimal.Decimal
	Debit         decimal.Decimal
	Time          time.Time
	ExtraInfo     json.RawMessage
}

// account is a resolved caller.
type account struct {
	player *models.Player
	cred   config.Credentials
	conv   ledger.Converter
}

// Balance reads the player's wallet balance.
func (l *Ledger) Balance(ctx context.Context, c Caller) (res Result, err error) {
	defer l.observe(ctx, "balance", time.Now(), &err)

	acct, err := l.resolve(ctx, c)
	if err != nil {
		return Result{}, err
	}
	wr, err := l.wallet.Balance(ctx, l.walletRequest(acct, "", "", decimal.Zero))
	if err != nil {
		return Result{}, ledger.Upstream(err)
	}
	return Result{Balance: acct.conv.ToProvider(wr.Credit), Currency: acct.conv.Currency}, nil
}

// Place records a new waiting wager once the balance covers its stake and
// the player's other unconfirmed stakes.
func (l *Ledger) Place(ctx context.Context, req PlaceRequest) (res Result, err error) {
	defer l.observe(ctx, "place", time.Now(), &err)

	acct, err := l.resolve(ctx, req.Caller)
	if err != nil {
		return Result{}, err
	}
	return l.place(ctx, acct, req)
}

func (l *Ledger) place(ctx context.Context, acct account, req PlaceRequest) (Result, error) {
	bet, err := ledger.NewBet(req.Category, req.Legs, req.Amount)
	if err != nil {
		return Result{}, err
	}
	active, err := l.wagers.GetActiveByTransactionID(ctx, req.TransactionID)
	if err != nil {
		return Result{}, err
	}
	d, err := ledger.Place(active, ledger.PlaceInput{
		TransactionID: req.TransactionID,
		OperationID:   req.OperationID,
		Provider:      l.provider.Name,
		PlayerID:      acct.player.UserCode,
		BranchCode:    acct.player.BranchCode,
		Currency:      acct.conv.Currency,
		Bet:           bet,
		Converter:     acct.conv,
		BetTime:       ledger.NormalizeBetTime(req.BetTime, l.loc, l.now),
		ExtraInfo:     req.ExtraInfo,
	})
	if err != nil {
		return Result{}, err
	}

	if err := l.assignBetID(ctx, &d); err != nil {
		return Result{}, err
	}
	wr, err := l.wallet.Balance(ctx, l.walletRequest(acct, req.TransactionID, d.Record.BetID, decimal.Zero))
	if err != nil {
		return Result{}, ledger.Upstream(err)
	}
	waiting, err := l.wagers.SumWaitingStakes(ctx, acct.player.UserCode, acct.conv.Currency)
	if err != nil {
		return Result{}, err
	}
	if err := ledger.CheckFunds(wr.Credit, d.Amount, waiting); err != nil {
		logger.Info(ctx).
			Str("transaction_id", req.TransactionID).
			Str("balance", wr.Credit.String()).
			Str("stake", d.Amount.String()).
			Str("waiting", waiting.String()).
			Msg("insufficient funds")
		return Result{}, err
	}
	if err := l.persist(ctx, &d); err != nil {
		return Result{}, err
	}
	return Result{Balance: acct.conv.ToProvider(wr.Credit), Currency: acct.conv.Currency, Record: &d.Record}, nil
}

// Confirm debits the stake of a waiting wager.
func (l *Ledger) Confirm(ctx context.Context, req ConfirmRequest) (res Result, err error) {
	defer l.observe(ctx, "confirm", time.Now(), &err)

	acct, err := l.resolve(ctx, req.Caller)
	if err != nil {
		return Result{}, err
	}
	return l.confirm(ctx, acct, req)
}

func (l *Ledger) confirm(ctx context.Context, acct account, req ConfirmRequest) (Result, error) {
	active, err := l.active(ctx, acct, req.TransactionID)
	if err != nil {
		return Result{}, err
	}
	d, err := ledger.Confirm(active, ledger.ConfirmInput{
		OperationID: req.OperationID,
		ActualStake: req.ActualStake,
		Converter:   acct.conv,
		ExtraInfo:   req.ExtraInfo,
	})
	if err != nil {
		return Result{}, err
	}
	return l.apply(ctx, acct, d)
}

// Deduct places and confirms a wager in one step. A wager left waiting by
// an earlier deduct is confirmed without placing it again, and a running
// number game wager is raised to the new total stake. When the debit fails
// the waiting record is cancelled so its stake stops counting against the
// player's funds.
func (l *Ledger) Deduct(ctx context.Context, req PlaceRequest) (res Result, err error) {
	defer l.observe(ctx, "deduct", time.Now(), &err)

	acct, err := l.resolve(ctx, req.Caller)
	if err != nil {
		return Result{}, err
	}
	active, err := l.wagers.GetActiveByTransactionID(ctx, req.TransactionID)
	if err != nil {
		return Result{}, err
	}
	switch {
	case active == nil:
		placed, err := l.place(ctx, acct, req)
		if err != nil {
			return Result{}, err
		}
		active = placed.Record
	case active.PlayerID != acct.player.UserCode:
		return Result{}, ledger.ErrDuplicateReference
	case active.Flag == models.FlagRunning && req.Category == ledger.CategoryNumberGame:
		return l.raise(ctx, acct, active, req)
	case active.Flag != models.FlagWaiting:
		return Result{}, ledger.ErrDuplicateReference
	}

	d, err := ledger.Confirm(active, ledger.ConfirmInput{
		OperationID: req.OperationID,
		Converter:   acct.conv,
		ExtraInfo:   req.ExtraInfo,
	})
	if err != nil {
		return Result{}, err
	}
	wr, err := l.call(ctx, acct, &d)
	if err != nil {
		l.release(ctx, active, req.OperationID)
		return Result{}, err
	}
	return l.record(ctx, acct, d, wr)
}

// raise debits the increase of a number game stake.
func (l *Ledger) raise(ctx context.Context, acct account, active *models.WagerRecord, req PlaceRequest) (Result, error) {
	d, err := ledger.Raise(active, ledger.RaiseInput{
		OperationID: req.OperationID,
		Stake:       req.Amount,
		Converter:   acct.conv,
	})
	if err != nil {
		return Result{}, err
	}

	wr, err := l.wallet.Balance(ctx, l.walletRequest(acct, req.TransactionID, active.BetID, decimal.Zero))
	if err != nil {
		return Result{}, ledger.Upstream(err)
	}
	if d == nil {
		return Result{Balance: acct.conv.ToProvider(wr.Credit), Currency: acct.conv.Currency, Record: active}, nil
	}
	waiting, err := l.wagers.SumWaitingStakes(ctx, acct.player.UserCode, acct.conv.Currency)
	if err != nil {
		return Result{}, err
	}
	if err := ledger.CheckFunds(wr.Credit, d.Amount, waiting); err != nil {
		return Result{}, err
	}
	return l.apply(ctx, acct, *d)
}

// release cancels a waiting record whose debit did not go through.
func (l *Ledger) release(ctx context.Context, waiting *models.WagerRecord, operationID string) {
	d, err := ledger.Cancel(waiting, operationID)
	if err == nil {
		err = l.assignBetID(ctx, &d)
	}
	if err == nil {
		err = l.persist(ctx, &d)
	}
	if err != nil {
		logger.Error(ctx).Err(err).
			Str("transaction_id", waiting.TransactionID).
			Str("bet_id", waiting.BetID).
			Msg("waiting wager left open after failed debit")
	}
}

// Cancel cancels a waiting wager or voids and refunds a debited one.
func (l *Ledger) Cancel(ctx context.Context, req CancelRequest) (res Result, err error) {
	defer l.observe(ctx, "cancel", time.Now(), &err)

	acct, err := l.resolve(ctx, req.Caller)
	if err != nil {
		return Result{}, err
	}
	active, err := l.active(ctx, acct, req.TransactionID)
	if err != nil {
		return Result{}, err
	}
	d, err := ledger.Cancel(active, req.OperationID)
	if err != nil {
		return Result{}, err
	}
	return l.apply(ctx, acct, d)
}

// Settle credits the payout of an open wager.
func (l *Ledger) Settle(ctx context.Context, req SettleRequest) (res Result, err error) {
	defer l.observe(ctx, "settle", time.Now(), &err)

	acct, err := l.resolve(ctx, req.Caller)
	if err != nil {
		return Result{}, err
	}
	active, err := l.active(ctx, acct, req.TransactionID)
	if err != nil {
		return Result{}, err
	}
	d, err := ledger.Settle(active, l.settleInput(acct, req))
	if err != nil {
		return Result{}, err
	}
	l.enrich(ctx, acct, &d, req)
	return l.apply(ctx, acct, d)
}

// Rollback reverses the last settlement, or re-opens a voided wager.
func (l *Ledger) Rollback(ctx context.Context, req CancelRequest) (res Result, err error) {
	defer l.observe(ctx, "rollback", time.Now(), &err)

	acct, err := l.resolve(ctx, req.Caller)
	if err != nil {
		return Result{}, err
	}
	active, err := l.active(ctx, acct, req.TransactionID)
	if err != nil {
		return Result{}, err
	}
	d, err := ledger.Rollback(active, req.OperationID)
	if err != nil {
		return Result{}, err
	}
	return l.apply(ctx, acct, d)
}

// Unsettle takes back the payout of a settled wager.
func (l *Ledger) Unsettle(ctx context.Context, req CancelRequest) (res Result, err error) {
	defer l.observe(ctx, "unsettle", time.Now(), &err)

	acct, err := l.resolve(ctx, req.Caller)
	if err != nil {
		return Result{}, err
	}
	active, err := l.active(ctx, acct, req.TransactionID)
	if err != nil {
		return Result{}, err
	}
	d, err := ledger.Unsettle(active, req.OperationID)
	if err != nil {
		return Result{}, err
	}
	return l.apply(ctx, acct, d)
}

// Resettle corrects a settlement by the difference to the payout last
// recorded for the transaction.
func (l *Ledger) Resettle(ctx context.Context, req SettleRequest) (res Result, err error) {
	defer l.observe(ctx, "resettle", time.Now(), &err)

	acct, err := l.resolve(ctx, req.Caller)
	if err != nil {
		return Result{}, err
	}
	active, err := l.active(ctx, acct, req.TransactionID)
	if err != nil {
		return Result{}, err
	}
	previous := decimal.Zero
	last, err := l.wagers.LatestSettlement(ctx, req.TransactionID)
	if err != nil {
		return Result{}, err
	}
	if last != nil {
		previous = last.PayoutAmount
	}
	d, err := ledger.Resettle(active, previous, l.settleInput(acct, req))
	if err != nil {
		return Result{}, err
	}
	l.enrich(ctx, acct, &d, req)
	return l.apply(ctx, acct, d)
}

// Adjust credits or debits a balance adjustment that is not a wager.
func (l *Ledger) Adjust(ctx context.Context, req AdjustRequest) (res Result, err error) {
	defer l.observe(ctx, "adjust", time.Now(), &err)

	acct, err := l.resolve(ctx, req.Caller)
	if err != nil {
		return Result{}, err
	}
	active, err := l.wagers.GetActiveByTransactionID(ctx, req.TransactionID)
	if err != nil {
		return Result{}, err
	}
	d, err := ledger.Adjust(active, ledger.AdjustInput{
		TransactionID: req.TransactionID,
		OperationID:   req.OperationID,
		Provider:      l.provider.Name,
		PlayerID:      acct.player.UserCode,
		BranchCode:    acct.player.BranchCode,
		Currency:      acct.conv.Currency,
		Credit:        req.Credit,
		Debit:         req.Debit,
		Converter:     acct.conv,
		Time:          ledger.NormalizeBetTime(req.Time, l.loc, l.now),
		ExtraInfo:     req.ExtraInfo,
	})
	if err != nil {
		return Result{}, err
	}
	return l.apply(ctx, acct, d)
}

// Status returns the active record of a transaction.
func (l *Ledger) Status(ctx context.Context, c Caller, transactionID string) (res Result, err error) {
	defer l.observe(ctx, "status", time.Now(), &err)

	acct, err := l.resolve(ctx, c)
	if err != nil {
		return Result{}, err
	}
	active, err := l.active(ctx, acct, transactionID)
	if err != nil {
		return Result{}, err
	}
	return Result{Currency: acct.conv.Currency, Record: active}, nil
}

// Converter returns the unit converter for a player's currency.
func (l *Ledger) Converter(currency string) (ledger.Converter, error) {
	cred, err := l.provider.CredentialsByCurrency(currency)
	if err != nil {
		return ledger.Converter{}, err
	}
	return ledger.NewConverter(currency, cred.Factor), nil
}

func (l *Ledger) resolve(ctx context.Context, c Caller) (account, error) {
	if c.PlayerID == "" {
		return account{}, ledger.ErrFieldMissing
	}
	p, err := l.players.FindPlayer(ctx, c.PlayerID)
	if errors.Is(err, store.ErrNotFound) {
		return account{}, ledger.ErrMemberNotFound
	}
	if err != nil {
		return account{}, fmt.Errorf("services.resolve: %w", err)
	}
	if !p.IsActive {
		return account{}, ledger.ErrMemberNotFound
	}
	cred, err := l.provider.CredentialsByCurrency(p.Currency)
	if err != nil {
		logger.Warn(ctx).Err(err).Str("player_id", p.UserCode).Msg("player currency has no credentials")
		return account{}, ledger.ErrInvalidKey
	}
	if c.Key != cred.VendorID {
		return account{}, ledger.ErrInvalidKey
	}
	return account{player: p, cred: cred, conv: ledger.NewConverter(p.Currency, cred.Factor)}, nil
}

// active loads the active record of a transaction owned by the caller.
func (l *Ledger) active(ctx context.Context, acct account, transactionID string) (*models.WagerRecord, error) {
	if transactionID == "" {
		return nil, ledger.ErrFieldMissing
	}
	rec, err := l.wagers.GetActiveByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.PlayerID != acct.player.UserCode {
		return nil, ledger.ErrTransactionNotFound
	}
	return rec, nil
}

func (l *Ledger) settleInput(acct account, req SettleRequest) ledger.SettleInput {
	return ledger.SettleInput{
		OperationID: req.OperationID,
		Payout:      req.Payout,
		CashOut:     req.CashOut,
		Void:        req.Void,
		Converter:   acct.conv,
		ExtraInfo:   req.ExtraInfo,
	}
}

// enrich copies live provider detail onto an accepted settlement. A failed
// lookup keeps the descriptive fields the wager already has.
func (l *Ledger) enrich(ctx context.Context, acct account, d *ledger.Decision, req SettleRequest) {
	if !req.Enrich || l.detail == nil || d.Previous == nil {
		return
	}
	detail, err := l.detail.GetBetDetail(ctx, acct.cred, *d.Previous)
	if err != nil {
		logger.Warn(ctx).Err(err).Str("transaction_id", req.TransactionID).Msg("settle enrichment failed")
		return
	}
	detail.Apply(&d.Record)
}

func (l *Ledger) assignBetID(ctx context.Context, d *ledger.Decision) error {
	n, err := l.wagers.CountByPrefix(ctx, d.Prefix, d.Record.TransactionID)
	if err != nil {
		return err
	}
	d.AssignBetID(d.OperationKey(), n)
	return nil
}

// apply performs the wallet call of d and records it. Nothing is persisted
// unless the wallet accepted the call.
func (l *Ledger) apply(ctx context.Context, acct account, d ledger.Decision) (Result, error) {
	wr, err := l.call(ctx, acct, &d)
	if err != nil {
		return Result{}, err
	}
	return l.record(ctx, acct, d, wr)
}

// call assigns the bet id of d and makes its wallet call. An error means
// no money moved as far as the gateway reported.
func (l *Ledger) call(ctx context.Context, acct account, d *ledger.Decision) (wallet.Result, error) {
	if err := l.assignBetID(ctx, d); err != nil {
		return wallet.Result{}, err
	}

	req := l.walletRequest(acct, d.Record.TransactionID, d.Record.BetID, d.Amount)
	var (
		wr  wallet.Result
		err error
	)
	switch d.Wallet {
	case ledger.WalletWager:
		wr, err = l.wallet.Wager(ctx, req)
	case ledger.WalletPayout:
		wr, err = l.wallet.Payout(ctx, req)
	case ledger.WalletResettle:
		wr, err = l.wallet.Resettle(ctx, req)
	case ledger.WalletTransferIn:
		wr, err = l.wallet.TransferIn(ctx, req)
	case ledger.WalletTransferOut:
		wr, err = l.wallet.TransferOut(ctx, req)
	}
	if err != nil {
		return wallet.Result{}, ledger.Upstream(err)
	}
	return wr, nil
}

// record persists d after its wallet call and reports the balance.
func (l *Ledger) record(ctx context.Context, acct account, d ledger.Decision, wr wallet.Result) (Result, error) {
	if err := l.persist(ctx, &d); err != nil {
		return Result{}, err
	}

	if !d.Wallet.Mutates() {
		var err error
		req := l.walletRequest(acct, d.Record.TransactionID, d.Record.BetID, decimal.Zero)
		if wr, err = l.wallet.Balance(ctx, req); err != nil {
			logger.Warn(ctx).Err(err).Str("bet_id", d.Record.BetID).Msg("balance read after record failed")
			return Result{Currency: acct.conv.Currency, Record: &d.Record}, nil
		}
	}
	return Result{Balance: acct.conv.ToProvider(wr.Credit), Currency: acct.conv.Currency, Record: &d.Record}, nil
}

func (l *Ledger) persist(ctx context.Context, d *ledger.Decision) error {
	err := l.wagers.Insert(ctx, &d.Record, d.Previous)
	if err == nil {
		logger.Info(ctx).
			Str("provider", l.provider.Name).
			Str("event", string(d.Event)).
			Str("bet_id", d.Record.BetID).
			Str("transaction_id", d.Record.TransactionID).
			Str("flag", string(d.Record.Flag)).
			Str("amount", d.Amount.String()).
			Msg("wager recorded")
		return nil
	}
	if errors.Is(err, ledger.ErrConflict) && d.Wallet.Mutates() {
		metrics.RecordConflict(l.provider.Name, string(d.Event))
		logger.Error(ctx).Err(err).
			Str("bet_id", d.Record.BetID).
			Str("transaction_id", d.Record.TransactionID).
			Str("wallet_op", string(d.Wallet)).
			Msg("wallet call applied but record lost a concurrent update")
	}
	return err
}

func (l *Ledger) walletRequest(acct account, transactionID, reference string, amount decimal.Decimal) wallet.Request {
	operator := acct.cred.OperatorID
	if operator == "" {
		operator = acct.cred.VendorID
	}
	return wallet.Request{
		Operator:      operator,
		Provider:      l.provider.Name,
		PlayerID:      acct.player.UserCode,
		Currency:      acct.conv.Currency,
		TransactionID: transactionID,
		Reference:     reference,
		Amount:        amount,
		Time:          l.now().In(l.loc),
	}
}

func (l *Ledger) observe(ctx context.Context, op string, started time.Time, err *error) {
	code := ledger.Code(*err)
	metrics.RecordOperation(l.provider.Name, op, code, started)
	if code != ledger.CodeSuccess {
		ev := logger.Info(ctx)
		if errors.Is(*err, ledger.ErrUpstream) || code == ledger.CodeInternal {
			ev = logger.Error(ctx)
		}
		ev.Err(*err).Str("provider", l.provider.Name).Str("operation", op).Int("code", code).Msg("event rejected")
	}
}

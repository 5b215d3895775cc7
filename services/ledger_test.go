package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sportsledger/config"
	"sportsledger/database/dbtest"
	"sportsledger/ledger"
	"sportsledger/models"
	"sportsledger/services"
	"sportsledger/store"
	"sportsledger/wallet/wallettest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ledger *services.Ledger
	wallet *wallettest.Fake
	wagers *store.WagerStore
	caller services.Caller
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture(t *testing.T, balance string, detail *fakeDetailer) *fixture {
	t.Helper()
	ctx := context.Background()
	db := dbtest.Open(t)

	players := store.NewPlayerStore(db)
	require.NoError(t, players.CreatePlayer(ctx, &models.Player{UserCode: "p1", BranchCode: "0abc", Currency: "IDR", IsActive: true}))

	w := wallettest.New(dec(balance))
	wagers := store.NewWagerStore(db)
	opts := services.LedgerOptions{
		Provider: config.ProviderConfig{
			Name: "saba",
			ByCurrency: map[string]config.Credentials{
				"IDR": {Currency: "IDR", VendorID: "vendor-key", Factor: decimal.NewFromInt(1)},
			},
		},
		Wagers:  wagers,
		Players: players,
		Wallet:  w,
		Now:     func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	}
	if detail != nil {
		opts.Detail = detail
	}
	return &fixture{
		ledger: services.NewLedger(opts),
		wallet: w,
		wagers: wagers,
		caller: services.Caller{Key: "vendor-key", PlayerID: "p1"},
	}
}

func (f *fixture) place(t *testing.T, txn, stake string) services.Result {
	t.Helper()
	res, err := f.ledger.Place(context.Background(), services.PlaceRequest{
		Caller:        f.caller,
		TransactionID: txn,
		OperationID:   "op-" + txn,
		Legs:          []ledger.Leg{{Match: "A vs B", Selection: "A", Odds: "1.9"}},
		Amount:        dec(stake),
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) confirm(t *testing.T, txn string) services.Result {
	t.Helper()
	res, err := f.ledger.Confirm(context.Background(), services.ConfirmRequest{Caller: f.caller, TransactionID: txn, OperationID: "op-c-" + txn})
	require.NoError(t, err)
	return res
}

func (f *fixture) settle(t *testing.T, txn, payout string) services.Result {
	t.Helper()
	res, err := f.ledger.Settle(context.Background(), services.SettleRequest{Caller: f.caller, TransactionID: txn, OperationID: "op-s-" + txn, Payout: dec(payout)})
	require.NoError(t, err)
	return res
}

func (f *fixture) assertOneActive(t *testing.T, txn string) *models.WagerRecord {
	t.Helper()
	history, err := f.wagers.History(context.Background(), txn)
	require.NoError(t, err)
	var active []models.WagerRecord
	for _, r := range history {
		if r.Active {
			active = append(active, r)
		}
	}
	require.Len(t, active, 1)
	return &active[0]
}

func TestPlaceThenConfirmDebitsStake(t *testing.T) {
	f := newFixture(t, "1000", nil)

	placed := f.place(t, "T1", "100")
	assert.Equal(t, models.FlagWaiting, placed.Record.Flag)
	assert.Equal(t, "bet-op-T1-1", placed.Record.BetID)
	assert.True(t, placed.Balance.Equal(dec("1000")))
	assert.Empty(t, f.wallet.Mutations())

	confirmed := f.confirm(t, "T1")
	assert.Equal(t, models.FlagRunning, confirmed.Record.Flag)
	assert.True(t, confirmed.Balance.Equal(dec("900")))

	calls := f.wallet.Mutations()
	require.Len(t, calls, 1)
	assert.Equal(t, "wager", calls[0].Op)
	assert.True(t, calls[0].Amount.Equal(dec("100")))
	assert.Equal(t, confirmed.Record.BetID, calls[0].Ref)

	active := f.assertOneActive(t, "T1")
	assert.Equal(t, models.FlagRunning, active.Flag)
}

func TestPlaceReservesWaitingStakes(t *testing.T) {
	f := newFixture(t, "150", nil)
	f.place(t, "T1", "100")

	_, err := f.ledger.Place(context.Background(), services.PlaceRequest{
		Caller: f.caller, TransactionID: "T2", Amount: dec("100"),
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assert.Equal(t, ledger.CodeInsufficientFunds, ledger.Code(err))

	active, err := f.wagers.GetActiveByTransactionID(context.Background(), "T2")
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestPlaceRejectsDuplicateAndUnknownCategory(t *testing.T) {
	f := newFixture(t, "1000", nil)
	f.place(t, "T1", "100")

	_, err := f.ledger.Place(context.Background(), services.PlaceRequest{Caller: f.caller, TransactionID: "T1", Amount: dec("100")})
	assert.Equal(t, ledger.CodeDuplicateReference, ledger.Code(err))

	_, err = f.ledger.Place(context.Background(), services.PlaceRequest{Caller: f.caller, TransactionID: "T9", Category: "casino", Amount: dec("1")})
	assert.Equal(t, ledger.CodeUnsupportedGame, ledger.Code(err))
}

func TestCallerResolution(t *testing.T) {
	f := newFixture(t, "1000", nil)
	ctx := context.Background()

	_, err := f.ledger.Balance(ctx, services.Caller{Key: "wrong", PlayerID: "p1"})
	assert.ErrorIs(t, err, ledger.ErrInvalidKey)

	_, err = f.ledger.Balance(ctx, services.Caller{Key: "vendor-key", PlayerID: "ghost"})
	assert.Equal(t, ledger.CodeMemberNotFound, ledger.Code(err))

	_, err = f.ledger.Cancel(ctx, services.CancelRequest{Caller: f.caller, TransactionID: "nope"})
	assert.Equal(t, ledger.CodeNotFound, ledger.Code(err))

	assert.Empty(t, f.wallet.Calls())

	res, err := f.ledger.Balance(ctx, f.caller)
	require.NoError(t, err)
	assert.True(t, res.Balance.Equal(dec("1000")))
	assert.Equal(t, "IDR", res.Currency)
}

func TestConfirmWalletFailureKeepsWaitingRecord(t *testing.T) {
	f := newFixture(t, "1000", nil)
	f.place(t, "T1", "100")
	f.wallet.Reject("wager", true)

	_, err := f.ledger.Confirm(context.Background(), services.ConfirmRequest{Caller: f.caller, TransactionID: "T1"})
	assert.ErrorIs(t, err, ledger.ErrUpstream)
	assert.Equal(t, ledger.CodeInternal, ledger.Code(err))
	assert.Equal(t, "Internal Error", ledger.Message(err))

	active := f.assertOneActive(t, "T1")
	assert.Equal(t, models.FlagWaiting, active.Flag)
	history, err := f.wagers.History(context.Background(), "T1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSettleWin(t *testing.T) {
	f := newFixture(t, "5000", nil)
	f.place(t, "T1", "1000")
	f.confirm(t, "T1")

	res := f.settle(t, "T1", "1200")
	assert.Equal(t, models.FlagSettled, res.Record.Flag)
	assert.Equal(t, models.OutcomeWin, res.Record.Outcome)
	assert.True(t, res.Balance.Equal(dec("5200")))

	calls := f.wallet.Mutations()
	require.Len(t, calls, 2)
	assert.Equal(t, "payout", calls[1].Op)
	assert.True(t, calls[1].Amount.Equal(dec("1200")))

	_, err := f.ledger.Settle(context.Background(), services.SettleRequest{Caller: f.caller, TransactionID: "T1", Payout: dec("1200")})
	assert.ErrorIs(t, err, ledger.ErrAlreadyProcessed)
	assert.Len(t, f.wallet.Mutations(), 2)
}

func TestCancelSettledIsRejectedWithoutWalletCall(t *testing.T) {
	f := newFixture(t, "5000", nil)
	f.place(t, "T1", "1000")
	f.confirm(t, "T1")
	f.settle(t, "T1", "1200")
	before := len(f.wallet.Calls())

	_, err := f.ledger.Cancel(context.Background(), services.CancelRequest{Caller: f.caller, TransactionID: "T1"})
	assert.ErrorIs(t, err, ledger.ErrInvalidStatus)
	assert.Equal(t, ledger.CodeAlreadySettled, ledger.Code(err))
	assert.Len(t, f.wallet.Calls(), before)
}

func TestCancelReplayRefundsOnce(t *testing.T) {
	f := newFixture(t, "1000", nil)
	f.place(t, "T1", "100")
	f.confirm(t, "T1")

	res, err := f.ledger.Cancel(context.Background(), services.CancelRequest{Caller: f.caller, TransactionID: "T1"})
	require.NoError(t, err)
	assert.Equal(t, models.FlagVoid, res.Record.Flag)
	assert.Equal(t, "cancel-T1-1", res.Record.BetID)

	_, err = f.ledger.Cancel(context.Background(), services.CancelRequest{Caller: f.caller, TransactionID: "T1"})
	assert.Equal(t, ledger.CodeAlreadyCancelled, ledger.Code(err))

	var refunds int
	for _, c := range f.wallet.Mutations() {
		if c.Op == "payout" {
			refunds++
		}
	}
	assert.Equal(t, 1, refunds)
	assert.True(t, f.wallet.Current().Equal(dec("1000")))
}

func TestCancelWaitingNeedsNoWalletMutation(t *testing.T) {
	f := newFixture(t, "1000", nil)
	f.place(t, "T1", "100")

	res, err := f.ledger.Cancel(context.Background(), services.CancelRequest{Caller: f.caller, TransactionID: "T1"})
	require.NoError(t, err)
	assert.Equal(t, models.FlagCancelled, res.Record.Flag)
	assert.Empty(t, f.wallet.Mutations())
	assert.True(t, res.Balance.Equal(dec("1000")))
}

func TestCorrectionAfterRollbackGetsNextSequence(t *testing.T) {
	f := newFixture(t, "1000", nil)
	ctx := context.Background()
	f.place(t, "T1", "100")
	f.confirm(t, "T1")

	_, err := f.ledger.Cancel(ctx, services.CancelRequest{Caller: f.caller, TransactionID: "T1"})
	require.NoError(t, err)
	rb, err := f.ledger.Rollback(ctx, services.CancelRequest{Caller: f.caller, TransactionID: "T1"})
	require.NoError(t, err)
	assert.Equal(t, models.FlagRollback, rb.Record.Flag)

	again, err := f.ledger.Cancel(ctx, services.CancelRequest{Caller: f.caller, TransactionID: "T1"})
	require.NoError(t, err)
	assert.Equal(t, "cancel-T1-2", again.Record.BetID)

	ops := []string{}
	for _, c := range f.wallet.Mutations() {
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []string{"wager", "payout", "wager", "payout"}, ops)
	f.assertOneActive(t, "T1")
}

func TestUnsettleThenResettleIssuesDelta(t *testing.T) {
	f := newFixture(t, "5000", nil)
	ctx := context.Background()
	f.place(t, "T1", "1000")
	f.confirm(t, "T1")
	f.settle(t, "T1", "1200")

	un, err := f.ledger.Unsettle(ctx, services.CancelRequest{Caller: f.caller, TransactionID: "T1"})
	require.NoError(t, err)
	assert.Equal(t, models.FlagUnsettled, un.Record.Flag)

	re, err := f.ledger.Resettle(ctx, services.SettleRequest{Caller: f.caller, TransactionID: "T1", Payout: dec("3000")})
	require.NoError(t, err)
	assert.Equal(t, models.FlagResettled, re.Record.Flag)

	calls := f.wallet.Mutations()
	require.Len(t, calls, 4)
	assert.Equal(t, "resettle", calls[2].Op)
	assert.True(t, calls[2].Amount.Equal(dec("-1200")))
	assert.Equal(t, "resettle", calls[3].Op)
	assert.True(t, calls[3].Amount.Equal(dec("1800")), calls[3].Amount.String())

	_, err = f.ledger.Unsettle(ctx, services.CancelRequest{Caller: f.caller, TransactionID: "T1"})
	require.NoError(t, err)
	_, err = f.ledger.Unsettle(ctx, services.CancelRequest{Caller: f.caller, TransactionID: "T1"})
	assert.Equal(t, ledger.CodeAlreadyRolledBack, ledger.Code(err))
}

func TestResettleFromSettledMovesDifference(t *testing.T) {
	f := newFixture(t, "5000", nil)
	f.place(t, "T1", "1000")
	f.confirm(t, "T1")
	f.settle(t, "T1", "1200")

	res, err := f.ledger.Resettle(context.Background(), services.SettleRequest{Caller: f.caller, TransactionID: "T1", Payout: dec("500")})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeLose, res.Record.Outcome)

	calls := f.wallet.Mutations()
	last := calls[len(calls)-1]
	assert.Equal(t, "resettle", last.Op)
	assert.True(t, last.Amount.Equal(dec("-700")))
	assert.True(t, f.wallet.Current().Equal(dec("4500")))
	f.assertOneActive(t, "T1")
}

func TestDeduct(t *testing.T) {
	f := newFixture(t, "1000", nil)
	ctx := context.Background()
	req := services.PlaceRequest{Caller: f.caller, TransactionID: "TC1", OperationID: "TX1", Amount: dec("200")}

	res, err := f.ledger.Deduct(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.FlagRunning, res.Record.Flag)
	assert.Equal(t, "confirm-TX1-1", res.Record.BetID)
	assert.True(t, res.Balance.Equal(dec("800")))

	_, err = f.ledger.Deduct(ctx, req)
	assert.Equal(t, ledger.CodeDuplicateReference, ledger.Code(err))
	assert.Len(t, f.wallet.Mutations(), 1)
}

func TestDeductResumesWaitingWager(t *testing.T) {
	f := newFixture(t, "1000", nil)
	f.place(t, "TC1", "200")

	res, err := f.ledger.Deduct(context.Background(), services.PlaceRequest{Caller: f.caller, TransactionID: "TC1", OperationID: "TX1", Amount: dec("200")})
	require.NoError(t, err)
	assert.Equal(t, models.FlagRunning, res.Record.Flag)
	assert.True(t, res.Balance.Equal(dec("800")))
	f.assertOneActive(t, "TC1")
}

func TestFailedDeductReleasesReservedStake(t *testing.T) {
	f := newFixture(t, "1000", nil)
	ctx := context.Background()

	f.wallet.Reject("wager", true)
	_, err := f.ledger.Deduct(ctx, services.PlaceRequest{Caller: f.caller, TransactionID: "TC1", OperationID: "TX1", Amount: dec("600")})
	assert.ErrorIs(t, err, ledger.ErrUpstream)

	active := f.assertOneActive(t, "TC1")
	assert.Equal(t, models.FlagCancelled, active.Flag)
	assert.Equal(t, "cancel-TX1-1", active.BetID)
	waiting, err := f.wagers.SumWaitingStakes(ctx, "p1", "IDR")
	require.NoError(t, err)
	assert.True(t, waiting.IsZero())

	f.wallet.Reject("wager", false)
	res, err := f.ledger.Deduct(ctx, services.PlaceRequest{Caller: f.caller, TransactionID: "TC2", OperationID: "TX2", Amount: dec("500")})
	require.NoError(t, err)
	assert.True(t, res.Balance.Equal(dec("500")))

	_, err = f.ledger.Cancel(ctx, services.CancelRequest{Caller: f.caller, TransactionID: "TC1", OperationID: "TX3"})
	assert.ErrorIs(t, err, ledger.ErrAlreadyCancelled)
}

func TestDeductRaisesNumberGameStake(t *testing.T) {
	f := newFixture(t, "1000", nil)
	ctx := context.Background()
	req := services.PlaceRequest{
		Caller:        f.caller,
		TransactionID: "TC9",
		OperationID:   "N1",
		Category:      ledger.CategoryNumberGame,
		Legs:          []ledger.Leg{{Event: "Number Game", Selection: "Over"}},
		Amount:        dec("100"),
	}

	res, err := f.ledger.Deduct(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.Balance.Equal(dec("900")))

	req.OperationID, req.Amount = "N2", dec("150")
	res, err = f.ledger.Deduct(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "confirm-N2-2", res.Record.BetID)
	assert.True(t, res.Record.BetAmount.Equal(dec("150")))
	assert.True(t, res.Balance.Equal(dec("850")))

	res, err = f.ledger.Deduct(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.Balance.Equal(dec("850")))

	req.OperationID, req.Amount = "N3", dec("120")
	_, err = f.ledger.Deduct(ctx, req)
	assert.ErrorIs(t, err, ledger.ErrStakeLowered)

	req.OperationID, req.Amount = "N4", dec("2000")
	_, err = f.ledger.Deduct(ctx, req)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	calls := f.wallet.Mutations()
	require.Len(t, calls, 2)
	assert.True(t, calls[1].Amount.Equal(dec("50")))
	active := f.assertOneActive(t, "TC9")
	assert.True(t, active.BetAmount.Equal(dec("150")))
}

func TestAdjust(t *testing.T) {
	f := newFixture(t, "1000", nil)
	ctx := context.Background()

	res, err := f.ledger.Adjust(ctx, services.AdjustRequest{Caller: f.caller, TransactionID: "B1", Credit: dec("50")})
	require.NoError(t, err)
	assert.Equal(t, models.FlagBonus, res.Record.Flag)
	assert.Equal(t, "bonus-B1-1", res.Record.BetID)
	assert.True(t, res.Balance.Equal(dec("1050")))

	_, err = f.ledger.Adjust(ctx, services.AdjustRequest{Caller: f.caller, TransactionID: "B1", Credit: dec("50")})
	assert.Equal(t, ledger.CodeDuplicateReference, ledger.Code(err))

	_, err = f.ledger.Adjust(ctx, services.AdjustRequest{Caller: f.caller, TransactionID: "B2", Credit: dec("5"), Debit: dec("5")})
	assert.ErrorIs(t, err, ledger.ErrAmbiguousAdjustment)

	res, err = f.ledger.Adjust(ctx, services.AdjustRequest{Caller: f.caller, TransactionID: "B3", Debit: dec("20")})
	require.NoError(t, err)
	assert.True(t, res.Balance.Equal(dec("1030")))
}

func TestStatus(t *testing.T) {
	f := newFixture(t, "1000", nil)
	f.place(t, "T1", "100")

	res, err := f.ledger.Status(context.Background(), f.caller, "T1")
	require.NoError(t, err)
	assert.Equal(t, models.FlagWaiting, res.Record.Flag)
}

type fakeDetailer struct {
	mu   sync.Mutex
	fail map[string]bool
	hits int
}

func (d *fakeDetailer) GetBetDetail(_ context.Context, _ config.Credentials, rec models.WagerRecord) (*ledger.Projection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hits++
	if d.fail[rec.TransactionID] {
		return nil, errors.New("provider down")
	}
	return &ledger.Projection{
		Shape: models.ShapeSingle, Event: "EPL", Match: "Live " + rec.TransactionID,
		Market: "1X2", Selection: "Home", Odds: "2.1", Score: "1:0",
	}, nil
}

func TestSettleEnrichment(t *testing.T) {
	detail := &fakeDetailer{fail: map[string]bool{"T2": true}}
	f := newFixture(t, "5000", detail)
	ctx := context.Background()
	for _, txn := range []string{"T1", "T2"} {
		f.place(t, txn, "100")
		f.confirm(t, txn)
	}

	res, err := f.ledger.Settle(ctx, services.SettleRequest{Caller: f.caller, TransactionID: "T1", Payout: dec("210"), Enrich: true})
	require.NoError(t, err)
	assert.Equal(t, "Live T1", res.Record.Match)
	assert.Equal(t, "1:0", res.Record.Score)

	res, err = f.ledger.Settle(ctx, services.SettleRequest{Caller: f.caller, TransactionID: "T2", Payout: dec("0"), Enrich: true})
	require.NoError(t, err)
	assert.Equal(t, "A vs B", res.Record.Match)
	assert.Equal(t, models.OutcomeLose, res.Record.Outcome)
	assert.Equal(t, 2, detail.hits)

	_, err = f.ledger.Settle(ctx, services.SettleRequest{Caller: f.caller, TransactionID: "T1", Payout: dec("210"), Enrich: true})
	assert.ErrorIs(t, err, ledger.ErrAlreadySettled)
	assert.Equal(t, 2, detail.hits)
}

package ledger

import (
	"encoding/json"
	"strings"
	"time"

	"sportsledger/models"

	"github.com/shopspring/decimal"
)

// Event is a provider-reported lifecycle event.
type Event string

const (
	EventPlace    Event = "place"
	EventConfirm  Event = "confirm"
	EventCancel   Event = "cancel"
	EventSettle   Event = "settle"
	EventRollback Event = "rollback"
	EventUnsettle Event = "unsettle"
	EventResettle Event = "resettle"
	EventAdjust   Event = "adjust"
)

// WalletOp is the wallet gateway call a decision requires.
type WalletOp string

const (
	WalletNone        WalletOp = "none"
	WalletBalance     WalletOp = "balance"
	WalletWager       WalletOp = "wager"
	WalletPayout      WalletOp = "payout"
	WalletResettle    WalletOp = "resettle"
	WalletTransferIn  WalletOp = "transferIn"
	WalletTransferOut WalletOp = "transferOut"
)

// Mutates reports whether op moves money.
func (op WalletOp) Mutates() bool {
	return op != WalletNone && op != WalletBalance
}

// Decision is the outcome of validating one event against the active record:
// which wallet call to make, for how much (ledger units, signed for
// resettle), and the record to insert once the wallet accepted it.
type Decision struct {
	Event    Event
	Prefix   Prefix
	Wallet   WalletOp
	Amount   decimal.Decimal
	Record   models.WagerRecord
	Previous *models.WagerRecord
}

// AssignBetID sets the derived bet id on the pending record.
func (d *Decision) AssignBetID(operationKey string, existingCount int64) string {
	d.Record.BetID = DeriveBetID(d.Prefix, operationKey, existingCount)
	return d.Record.BetID
}

// OperationKey is the key embedded in the bet id: the operator supplied
// operation id, or the transaction id when the provider sends none.
func (d *Decision) OperationKey() string {
	if k := strings.TrimSpace(d.Record.OperationID); k != "" {
		return k
	}
	return d.Record.TransactionID
}

type PlaceInput struct {
	TransactionID string
	OperationID   string
	Provider      string
	PlayerID      string
	BranchCode    string
	Currency      string
	Bet           Bet
	Converter     Converter
	BetTime       time.Time
	ExtraInfo     json.RawMessage
}

// Place accepts a new wager in the waiting state. The wallet call is a
// balance read used for the funds check.
func Place(active *models.WagerRecord, in PlaceInput) (Decision, error) {
	if strings.TrimSpace(in.TransactionID) == "" || strings.TrimSpace(in.PlayerID) == "" || in.Bet == nil {
		return Decision{}, ErrFieldMissing
	}
	if active != nil {
		return Decision{}, ErrDuplicateReference
	}
	if in.Bet.Stake().Sign() <= 0 {
		return Decision{}, ErrInvalidAmount
	}

	stake := in.Converter.ToLedger(in.Bet.Stake())
	rec := models.WagerRecord{
		TransactionID: in.TransactionID,
		OperationID:   in.OperationID,
		Provider:      in.Provider,
		PlayerID:      in.PlayerID,
		BranchCode:    in.BranchCode,
		Currency:      NormalizeCurrency(in.Currency),
		BetAmount:     stake,
		PayoutAmount:  decimal.Zero,
		BetTime:       in.BetTime,
		Outcome:       models.OutcomePending,
		Flag:          models.FlagWaiting,
		Active:        true,
	}
	in.Bet.Project().Apply(&rec)
	if len(in.ExtraInfo) > 0 {
		rec.ExtraInfo = []byte(in.ExtraInfo)
	}

	return Decision{
		Event:  EventPlace,
		Prefix: PrefixBet,
		Wallet: WalletBalance,
		Amount: stake,
		Record: rec,
	}, nil
}

// CheckFunds rejects a stake the balance cannot cover once the stakes of
// the player's other unconfirmed wagers are reserved.
func CheckFunds(balance, stake, waiting decimal.Decimal) error {
	if balance.LessThan(stake.Add(waiting)) {
		return ErrInsufficientFunds
	}
	return nil
}

type ConfirmInput struct {
	OperationID string
	// ActualStake replaces the placed stake when the provider confirms a
	// different amount. Provider units; zero keeps the placed stake.
	ActualStake decimal.Decimal
	Converter   Converter
	ExtraInfo   json.RawMessage
}

// Confirm moves a waiting wager to running and debits the stake.
func Confirm(active *models.WagerRecord, in ConfirmInput) (Decision, error) {
	if active == nil {
		return Decision{}, ErrTransactionNotFound
	}
	switch active.Flag {
	case models.FlagWaiting:
	case models.FlagRunning:
		return Decision{}, ErrDuplicateReference
	default:
		return Decision{}, invalidStatus(active.Flag)
	}

	next := active.Successor(models.FlagRunning)
	next.OperationID = in.OperationID
	if in.ActualStake.Sign() > 0 {
		next.BetAmount = in.Converter.ToLedger(in.ActualStake)
	}
	if len(in.ExtraInfo) > 0 {
		next.ExtraInfo = []byte(in.ExtraInfo)
	}
	return Decision{
		Event:    EventConfirm,
		Prefix:   PrefixConfirm,
		Wallet:   WalletWager,
		Amount:   next.BetAmount,
		Record:   next,
		Previous: active,
	}, nil
}

type RaiseInput struct {
	OperationID string
	// Stake is the new total stake in provider units.
	Stake     decimal.Decimal
	Converter Converter
}

// Raise tops up the stake of a running number game wager, which the
// provider re-sends with a growing total. The wallet debits only the
// increase. A nil decision means the stake is unchanged.
func Raise(active *models.WagerRecord, in RaiseInput) (*Decision, error) {
	if active == nil {
		return nil, ErrTransactionNotFound
	}
	if active.Shape != models.ShapeNumber || active.Flag != models.FlagRunning {
		return nil, ErrDuplicateReference
	}
	if in.Stake.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	stake := in.Converter.ToLedger(in.Stake)
	switch stake.Cmp(active.BetAmount) {
	case 0:
		return nil, nil
	case -1:
		return nil, ErrStakeLowered
	}

	next := active.Successor(models.FlagRunning)
	next.OperationID = in.OperationID
	next.BetAmount = stake
	return &Decision{
		Event:    EventConfirm,
		Prefix:   PrefixConfirm,
		Wallet:   WalletWager,
		Amount:   stake.Sub(active.BetAmount),
		Record:   next,
		Previous: active,
	}, nil
}

// Cancel voids a wager before settlement. A waiting wager was never debited
// and becomes cancelled without a wallet call; a debited one becomes void
// and its stake is refunded.
func Cancel(active *models.WagerRecord, operationID string) (Decision, error) {
	if active == nil {
		return Decision{}, ErrTransactionNotFound
	}

	d := Decision{Event: EventCancel, Prefix: PrefixCancel, Previous: active}
	switch active.Flag {
	case models.FlagWaiting:
		d.Record = active.Successor(models.FlagCancelled)
		d.Wallet = WalletNone
		d.Amount = decimal.Zero
	case models.FlagRunning, models.FlagRollback:
		d.Record = active.Successor(models.FlagVoid)
		d.Wallet = WalletPayout
		d.Amount = active.BetAmount
	case models.FlagCancelled, models.FlagVoid:
		return Decision{}, ErrAlreadyCancelled
	default:
		return Decision{}, invalidStatus(active.Flag)
	}
	d.Record.OperationID = operationID
	d.Record.PayoutAmount = decimal.Zero
	d.Record.Outcome = models.OutcomeVoid
	return d, nil
}

type SettleInput struct {
	OperationID string
	// Payout is the amount to credit in provider units.
	Payout    decimal.Decimal
	CashOut   bool
	Void      bool
	Converter Converter
	ExtraInfo json.RawMessage
}

// Settle resolves a running wager and credits the payout. A wager whose
// settlement was rolled back or unsettled is settled again through the
// resettle wallet operation.
func Settle(active *models.WagerRecord, in SettleInput) (Decision, error) {
	if active == nil {
		return Decision{}, ErrTransactionNotFound
	}
	if in.Payout.IsNegative() {
		return Decision{}, ErrInvalidAmount
	}

	d := Decision{Event: EventSettle, Previous: active}
	switch active.Flag {
	case models.FlagRunning:
		d.Prefix, d.Wallet = PrefixSettle, WalletPayout
	case models.FlagRollback, models.FlagUnsettled:
		d.Prefix, d.Wallet = PrefixResettle, WalletResettle
	case models.FlagSettled, models.FlagResettled:
		return Decision{}, ErrAlreadySettled
	default:
		return Decision{}, invalidStatus(active.Flag)
	}

	payout := in.Converter.ToLedger(in.Payout)
	d.Record = settledRecord(active, models.FlagSettled, payout, in)
	d.Amount = payout
	return d, nil
}

// Rollback reverses a settlement, or re-debits the stake of a wager that was
// voided after being debited. Either way the wager is open again.
func Rollback(active *models.WagerRecord, operationID string) (Decision, error) {
	if active == nil {
		return Decision{}, ErrTransactionNotFound
	}

	d := Decision{Event: EventRollback, Prefix: PrefixRollback, Previous: active}
	switch active.Flag {
	case models.FlagSettled, models.FlagResettled:
		d.Wallet = WalletResettle
		d.Amount = active.PayoutAmount.Neg()
	case models.FlagVoid:
		d.Wallet = WalletWager
		d.Amount = active.BetAmount
	case models.FlagRollback, models.FlagUnsettled:
		return Decision{}, ErrAlreadyRolledBack
	default:
		return Decision{}, ErrStatusNotAllowed
	}
	d.Record = reopened(active, models.FlagRollback, operationID)
	return d, nil
}

// Unsettle reverses the payout of a settled wager pending a new settlement.
func Unsettle(active *models.WagerRecord, operationID string) (Decision, error) {
	if active == nil {
		return Decision{}, ErrTransactionNotFound
	}
	switch active.Flag {
	case models.FlagSettled, models.FlagResettled:
	case models.FlagRollback, models.FlagUnsettled:
		return Decision{}, ErrAlreadyRolledBack
	default:
		return Decision{}, invalidStatus(active.Flag)
	}
	return Decision{
		Event:    EventUnsettle,
		Prefix:   PrefixUnsettle,
		Wallet:   WalletResettle,
		Amount:   active.PayoutAmount.Neg(),
		Record:   reopened(active, models.FlagUnsettled, operationID),
		Previous: active,
	}, nil
}

// Resettle corrects a settlement. The wallet moves only the difference
// between the new payout and previousPayout, the payout last recorded by a
// settled or resettled record of the same transaction (ledger units).
func Resettle(active *models.WagerRecord, previousPayout decimal.Decimal, in SettleInput) (Decision, error) {
	if active == nil {
		return Decision{}, ErrTransactionNotFound
	}
	if in.Payout.IsNegative() {
		return Decision{}, ErrInvalidAmount
	}
	switch active.Flag {
	case models.FlagSettled, models.FlagResettled, models.FlagRollback, models.FlagUnsettled:
	default:
		return Decision{}, invalidStatus(active.Flag)
	}

	payout := in.Converter.ToLedger(in.Payout)
	return Decision{
		Event:    EventResettle,
		Prefix:   PrefixResettle,
		Wallet:   WalletResettle,
		Amount:   payout.Sub(previousPayout),
		Record:   settledRecord(active, models.FlagResettled, payout, in),
		Previous: active,
	}, nil
}

type AdjustInput struct {
	TransactionID string
	OperationID   string
	Provider      string
	PlayerID      string
	BranchCode    string
	Currency      string
	// Credit and Debit are provider units; exactly one must be positive.
	Credit    decimal.Decimal
	Debit     decimal.Decimal
	Converter Converter
	Time      time.Time
	ExtraInfo json.RawMessage
}

// Adjust records a balance adjustment that is not a wager.
func Adjust(active *models.WagerRecord, in AdjustInput) (Decision, error) {
	if strings.TrimSpace(in.TransactionID) == "" || strings.TrimSpace(in.PlayerID) == "" {
		return Decision{}, ErrFieldMissing
	}
	if in.Credit.IsNegative() || in.Debit.IsNegative() {
		return Decision{}, ErrInvalidAmount
	}
	credit, debit := in.Credit.Sign() > 0, in.Debit.Sign() > 0
	if credit && debit {
		return Decision{}, ErrAmbiguousAdjustment
	}
	if !credit && !debit {
		return Decision{}, ErrInvalidAmount
	}
	if active != nil {
		return Decision{}, ErrDuplicateReference
	}

	rec := models.WagerRecord{
		TransactionID: in.TransactionID,
		OperationID:   in.OperationID,
		Provider:      in.Provider,
		PlayerID:      in.PlayerID,
		BranchCode:    in.BranchCode,
		Currency:      NormalizeCurrency(in.Currency),
		BetAmount:     decimal.Zero,
		PayoutAmount:  decimal.Zero,
		BetTime:       in.Time,
		Outcome:       models.OutcomePending,
		Flag:          models.FlagBonus,
		Active:        true,
	}
	PlaceholderProjection(models.ShapeSingle).Apply(&rec)
	rec.Event = "Balance adjustment"
	if len(in.ExtraInfo) > 0 {
		rec.ExtraInfo = []byte(in.ExtraInfo)
	}

	d := Decision{Event: EventAdjust, Prefix: PrefixBonus, Record: rec}
	if credit {
		d.Wallet = WalletTransferIn
		d.Amount = in.Converter.ToLedger(in.Credit)
		d.Record.PayoutAmount = d.Amount
	} else {
		d.Wallet = WalletTransferOut
		d.Amount = in.Converter.ToLedger(in.Debit)
		d.Record.BetAmount = d.Amount
	}
	return d, nil
}

func settledRecord(active *models.WagerRecord, flag models.Flag, payout decimal.Decimal, in SettleInput) models.WagerRecord {
	next := active.Successor(flag)
	next.OperationID = in.OperationID
	next.PayoutAmount = payout
	next.Outcome = Classify(payout, active.BetAmount, in.CashOut, in.Void)
	if len(in.ExtraInfo) > 0 {
		next.ExtraInfo = []byte(in.ExtraInfo)
	}
	return next
}

func reopened(active *models.WagerRecord, flag models.Flag, operationID string) models.WagerRecord {
	next := active.Successor(flag)
	next.OperationID = operationID
	next.PayoutAmount = decimal.Zero
	next.Outcome = models.OutcomePending
	return next
}

func invalidStatus(flag models.Flag) error {
	switch flag {
	case models.FlagSettled, models.FlagResettled:
		return ErrSettledNotAllowed
	case models.FlagCancelled, models.FlagVoid:
		return ErrCancelledNotAllowed
	default:
		return ErrStatusNotAllowed
	}
}

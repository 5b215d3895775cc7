package ledger

import (
	"errors"
	"fmt"
)

// Provider-facing response codes.
const (
	CodeSuccess            = 0
	CodeMemberNotFound     = 1
	CodeFieldMissing       = 3
	CodeInvalidKey         = 4
	CodeInsufficientFunds  = 5
	CodeNotFound           = 6
	CodeInternal           = 7
	CodeInvalidStatus      = 8
	CodeUnsupportedGame    = 404
	CodeAlreadySettled     = 2001
	CodeAlreadyCancelled   = 2002
	CodeAlreadyRolledBack  = 2003
	CodeDuplicateReference = 5003
)

// Error kinds. Every StatusError unwraps to exactly one of these, so callers
// can branch on the category with errors.Is.
var (
	ErrValidation       = errors.New("validation error")
	ErrAuthentication   = errors.New("authentication error")
	ErrNotFound         = errors.New("not found")
	ErrInvalidStatus    = errors.New("invalid transaction status")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrUpstream         = errors.New("upstream error")
)

// StatusError is a fatal orchestrator error carrying the provider code.
type StatusError struct {
	Code int
	Msg  string
	kind error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Msg, e.Code)
}

func (e *StatusError) Unwrap() error { return e.kind }

func newStatusError(kind error, code int, msg string) *StatusError {
	return &StatusError{Code: code, Msg: msg, kind: kind}
}

var (
	ErrFieldMissing        = newStatusError(ErrValidation, CodeFieldMissing, "Required field missing")
	ErrInvalidAmount       = newStatusError(ErrValidation, CodeFieldMissing, "Invalid amount")
	ErrAmbiguousAdjustment = newStatusError(ErrValidation, CodeFieldMissing, "Credit and debit are mutually exclusive")
	ErrUnsupportedCategory = newStatusError(ErrValidation, CodeUnsupportedGame, "Unsupported game category")
	ErrStakeLowered        = newStatusError(ErrValidation, CodeInternal, "Amount lower than previous for same transaction")
	ErrInvalidKey          = newStatusError(ErrAuthentication, CodeInvalidKey, "Invalid Key")
	ErrMemberNotFound      = newStatusError(ErrNotFound, CodeMemberNotFound, "Member not found")
	ErrTransactionNotFound = newStatusError(ErrNotFound, CodeNotFound, "Bet not found")
	ErrInsufficientFunds   = newStatusError(ErrInvalidStatus, CodeInsufficientFunds, "Insufficient balance")
	ErrStatusNotAllowed    = newStatusError(ErrInvalidStatus, CodeInvalidStatus, "Invalid transaction status")
	ErrSettledNotAllowed   = newStatusError(ErrInvalidStatus, CodeAlreadySettled, "Bet Already Settled")
	ErrCancelledNotAllowed = newStatusError(ErrInvalidStatus, CodeAlreadyCancelled, "Bet Already Canceled")
	ErrAlreadySettled      = newStatusError(ErrAlreadyProcessed, CodeAlreadySettled, "Bet Already Settled")
	ErrAlreadyCancelled    = newStatusError(ErrAlreadyProcessed, CodeAlreadyCancelled, "Bet Already Canceled")
	ErrAlreadyRolledBack   = newStatusError(ErrAlreadyProcessed, CodeAlreadyRolledBack, "Bet Already Rollback")
	ErrDuplicateReference  = newStatusError(ErrAlreadyProcessed, CodeDuplicateReference, "Duplicate Transaction")
	ErrConflict            = newStatusError(ErrAlreadyProcessed, CodeDuplicateReference, "Concurrent update on transaction")
	ErrWalletFailure       = newStatusError(ErrUpstream, CodeInternal, "Internal Error")
)

// Code maps any error returned by the ledger or its orchestrators to the
// provider-facing response code. Unknown errors are internal errors.
func Code(err error) int {
	if err == nil {
		return CodeSuccess
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeInternal
}

// Message returns the provider-facing message for err. Upstream and unknown
// errors never echo their underlying detail.
func Message(err error) string {
	if err == nil {
		return "Success"
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Msg
	}
	return ErrWalletFailure.Msg
}

// Upstream wraps a gateway failure so it classifies as ErrWalletFailure while
// keeping the cause for logs.
func Upstream(cause error) error {
	if cause == nil {
		return ErrWalletFailure
	}
	return fmt.Errorf("%w: %v", ErrWalletFailure, cause)
}

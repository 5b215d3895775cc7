package ledger

import (
	"fmt"
	"strings"
)

// Prefix names the operation a bet id was derived for.
type Prefix string

const (
	PrefixBet      Prefix = "bet"
	PrefixConfirm  Prefix = "confirm"
	PrefixCancel   Prefix = "cancel"
	PrefixSettle   Prefix = "settle"
	PrefixResettle Prefix = "resettle"
	PrefixRollback Prefix = "rollback"
	PrefixUnsettle Prefix = "unsettle"
	PrefixBonus    Prefix = "bonus"
)

// Pattern is the LIKE pattern matching every bet id derived for p.
func (p Prefix) Pattern() string {
	return string(p) + "-%"
}

// DeriveBetID builds the canonical identifier for one wallet operation:
// <prefix>-<operationKey>-<existingCount+1>. existingCount is the number of
// records already stored with the same prefix and transaction id, so a
// replayed provider event always lands on a fresh identifier.
func DeriveBetID(prefix Prefix, operationKey string, existingCount int64) string {
	if existingCount < 0 {
		existingCount = 0
	}
	key := strings.TrimSpace(operationKey)
	return fmt.Sprintf("%s-%s-%d", prefix, key, existingCount+1)
}

// PrefixOf returns the prefix a derived bet id starts with.
func PrefixOf(betID string) (Prefix, bool) {
	head, _, ok := strings.Cut(betID, "-")
	if !ok {
		return "", false
	}
	switch p := Prefix(head); p {
	case PrefixBet, PrefixConfirm, PrefixCancel, PrefixSettle, PrefixResettle,
		PrefixRollback, PrefixUnsettle, PrefixBonus:
		return p, true
	}
	return "", false
}

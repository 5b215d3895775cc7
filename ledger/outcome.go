package ledger

import (
	"sportsledger/models"

	"github.com/shopspring/decimal"
)

// Classify derives the settlement outcome from the payout credited for a
// wager and its stake, both in the same units. It never changes the amount
// moved in the wallet.
func Classify(payout, stake decimal.Decimal, cashOut, void bool) models.Outcome {
	switch {
	case void:
		return models.OutcomeVoid
	case payout.GreaterThan(stake):
		return models.OutcomeWin
	case payout.Equal(stake):
		return models.OutcomeDraw
	case payout.Sign() <= 0:
		return models.OutcomeLose
	case cashOut:
		return models.OutcomeCashOut
	default:
		// half lose
		return models.OutcomeLose
	}
}

package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Scale is the number of decimal places kept for ledger amounts in currency.
func Scale(currency string) int32 {
	switch NormalizeCurrency(currency) {
	case "IDR", "VND", "KRW", "JPY":
		return 0
	default:
		return 2
	}
}

// Converter moves amounts between provider units and ledger units using the
// factor configured for a currency. It knows nothing about where the factor
// comes from.
type Converter struct {
	Currency string
	Factor   decimal.Decimal
}

func NewConverter(currency string, factor decimal.Decimal) Converter {
	if factor.IsZero() || factor.IsNegative() {
		factor = decimal.NewFromInt(1)
	}
	return Converter{Currency: NormalizeCurrency(currency), Factor: factor}
}

// ToLedger converts a provider amount into ledger units, rounded to the
// currency scale.
func (c Converter) ToLedger(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(c.factor()).Round(Scale(c.Currency))
}

// ToProvider converts a ledger amount back into provider units.
func (c Converter) ToProvider(amount decimal.Decimal) decimal.Decimal {
	return amount.DivRound(c.factor(), 4)
}

func (c Converter) factor() decimal.Decimal {
	if c.Factor.IsZero() {
		return decimal.NewFromInt(1)
	}
	return c.Factor
}

package sbo

import (
	"strconv"
	"strings"

	"sportsledger/ledger"

	"github.com/shopspring/decimal"
)

// Category maps the sbo sports type onto a ledger game category.
func Category(sportsType string) string {
	if strings.Contains(strings.ToLower(sportsType), "number") {
		return ledger.CategoryNumberGame
	}
	return ledger.CategorySportsbook
}

// Project turns a reported bet into the descriptive fields of a record.
func (b Bet) Project() (ledger.Projection, error) {
	legs := make([]ledger.Leg, 0, len(b.SubBets))
	for _, s := range b.SubBets {
		score := s.FtScore
		if score == "" {
			score = s.LiveScore
		}
		legs = append(legs, ledger.Leg{
			Event:     s.League,
			Match:     s.Match,
			Market:    s.MarketType,
			Selection: s.BetOption,
			Handicap:  formatFloat(s.Hdp),
			Odds:      formatFloat(s.Odds),
			Score:     score,
			Status:    s.Status,
		})
	}
	if len(legs) == 0 {
		legs = append(legs, ledger.Leg{Event: b.SportsType, Odds: formatFloat(b.Odds)})
	}

	bet, err := ledger.NewBet(Category(b.SportsType), legs, decimal.NewFromFloat(b.Stake))
	if err != nil {
		return ledger.Projection{}, err
	}
	return bet.Project(), nil
}

func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package ledger

import (
	"time"

	"sportsledger/models"

	"github.com/shopspring/decimal"
)

// OutstandingEntry is one open wager in the running report.
type OutstandingEntry struct {
	BetID         string          `json:"bet_id"`
	TransactionID string          `json:"transaction_id"`
	Provider      string          `json:"provider"`
	PlayerID      string          `json:"player_id"`
	Currency      string          `json:"currency"`
	Flag          models.Flag     `json:"flag"`
	Stake         decimal.Decimal `json:"stake"`
	BetTime       time.Time       `json:"bet_time"`
	Shape         models.Shape    `json:"shape"`
	Event         string          `json:"event"`
	Match         string          `json:"match"`
	Market        string          `json:"market"`
	Selection     string          `json:"selection"`
	Handicap      string          `json:"handicap"`
	Odds          string          `json:"odds"`
	Score         string          `json:"score"`
	Enriched      bool            `json:"enriched"`
}

// OutstandingPage is a page of the running report.
type OutstandingPage struct {
	Items []OutstandingEntry `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Size  int                `json:"size"`
}

// NewOutstandingEntry builds the report row for rec. detail is the live
// provider detail; when nil the descriptive fields are placeholders.
func NewOutstandingEntry(rec models.WagerRecord, detail *Projection) OutstandingEntry {
	p := PlaceholderProjection(rec.Shape)
	if detail != nil {
		p = *detail
		if p.Shape == "" {
			p.Shape = rec.Shape
		}
	}
	return OutstandingEntry{
		BetID:         rec.BetID,
		TransactionID: rec.TransactionID,
		Provider:      rec.Provider,
		PlayerID:      rec.PlayerID,
		Currency:      rec.Currency,
		Flag:          rec.Flag,
		Stake:         rec.BetAmount,
		BetTime:       rec.BetTime,
		Shape:         p.Shape,
		Event:         orPlaceholder(p.Event),
		Match:         orPlaceholder(p.Match),
		Market:        orPlaceholder(p.Market),
		Selection:     orPlaceholder(p.Selection),
		Handicap:      orPlaceholder(p.Handicap),
		Odds:          orPlaceholder(p.Odds),
		Score:         orPlaceholder(p.Score),
		Enriched:      detail != nil,
	}
}

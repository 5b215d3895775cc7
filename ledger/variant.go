package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"sportsledger/models"

	"github.com/shopspring/decimal"
)

// Placeholder fills descriptive fields that a payload cannot provide.
const Placeholder = "-"

// Game categories understood by ClassifyShape.
const (
	CategorySportsbook = "sportsbook"
	CategoryNumberGame = "number"
)

// MixParlay is the match label of an aggregated multi-leg record.
const MixParlay = "Mix Parlay"

// Widths, in characters, of the descriptive WagerRecord columns.
const (
	textWidth   = 255
	marketWidth = 100
	shortWidth  = 32
)

// Leg is one selection of a wager as reported by a provider. Stake is in
// provider units and is only set for legs that carry their own stake.
type Leg struct {
	Event     string          `json:"event,omitempty"`
	Match     string          `json:"match,omitempty"`
	Market    string          `json:"market,omitempty"`
	Selection string          `json:"selection,omitempty"`
	Handicap  string          `json:"handicap,omitempty"`
	Odds      string          `json:"odds,omitempty"`
	Score     string          `json:"score,omitempty"`
	Status    string          `json:"status,omitempty"`
	Stake     decimal.Decimal `json:"stake"`
}

// Projection is the set of WagerRecord descriptive fields a payload yields.
type Projection struct {
	Shape     models.Shape
	Event     string
	Match     string
	Market    string
	Selection string
	Handicap  string
	Odds      string
	Score     string
	Legs      []Leg
}

// Bet is the tagged variant over provider payload shapes.
type Bet interface {
	Shape() models.Shape
	// Stake is the total stake in provider units.
	Stake() decimal.Decimal
	Project() Projection
}

type SingleBet struct {
	Leg    Leg
	Amount decimal.Decimal
}

func (b SingleBet) Shape() models.Shape     { return models.ShapeSingle }
func (b SingleBet) Stake() decimal.Decimal { return b.Amount }

func (b SingleBet) Project() Projection {
	return Projection{
		Shape:     models.ShapeSingle,
		Event:     orPlaceholder(b.Leg.Event),
		Match:     orPlaceholder(b.Leg.Match),
		Market:    orPlaceholder(b.Leg.Market),
		Selection: orPlaceholder(b.Leg.Selection),
		Handicap:  orPlaceholder(b.Leg.Handicap),
		Odds:      orPlaceholder(b.Leg.Odds),
		Score:     orPlaceholder(b.Leg.Score),
	}
}

// ParlayBet is a multi-leg wager staked and settled as one ledger entry.
type ParlayBet struct {
	Legs []Leg
	// Amount is used when the legs carry no stake of their own.
	Amount decimal.Decimal
}

func (b ParlayBet) Shape() models.Shape { return models.ShapeParlay }

func (b ParlayBet) Stake() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.Legs {
		total = total.Add(l.Stake)
	}
	if total.IsZero() {
		return b.Amount
	}
	return total
}

func (b ParlayBet) Project() Projection {
	selections := make([]string, 0, len(b.Legs))
	odds := decimal.NewFromInt(1)
	oddsKnown := len(b.Legs) > 0
	for _, l := range b.Legs {
		if l.Selection != "" {
			selections = append(selections, l.Selection)
		}
		o, err := decimal.NewFromString(strings.TrimSpace(l.Odds))
		if err != nil {
			oddsKnown = false
			continue
		}
		odds = odds.Mul(o)
	}
	p := Projection{
		Shape:     models.ShapeParlay,
		Event:     fmt.Sprintf("%d legs", len(b.Legs)),
		Match:     MixParlay,
		Market:    "Parlay",
		Selection: orPlaceholder(strings.Join(selections, " / ")),
		Handicap:  Placeholder,
		Odds:      Placeholder,
		Score:     Placeholder,
		Legs:      b.Legs,
	}
	if oddsKnown {
		p.Odds = odds.Round(2).String()
	}
	return p
}

// NumberGameBet has no sports-match metadata; only the game and the picked
// selection are known.
type NumberGameBet struct {
	Game      string
	Selection string
	Odds      string
	Amount    decimal.Decimal
}

func (b NumberGameBet) Shape() models.Shape     { return models.ShapeNumber }
func (b NumberGameBet) Stake() decimal.Decimal { return b.Amount }

func (b NumberGameBet) Project() Projection {
	return Projection{
		Shape:     models.ShapeNumber,
		Event:     orPlaceholder(b.Game),
		Match:     Placeholder,
		Market:    Placeholder,
		Selection: orPlaceholder(b.Selection),
		Handicap:  Placeholder,
		Odds:      orPlaceholder(b.Odds),
		Score:     Placeholder,
	}
}

// ClassifyShape picks the payload variant from the game category and the
// number of legs the payload carries.
func ClassifyShape(category string, legCount int) (models.Shape, error) {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case CategoryNumberGame:
		return models.ShapeNumber, nil
	case CategorySportsbook, "":
		if legCount > 1 {
			return models.ShapeParlay, nil
		}
		return models.ShapeSingle, nil
	default:
		return "", ErrUnsupportedCategory
	}
}

// NewBet builds the variant selected by ClassifyShape.
func NewBet(category string, legs []Leg, amount decimal.Decimal) (Bet, error) {
	shape, err := ClassifyShape(category, len(legs))
	if err != nil {
		return nil, err
	}
	switch shape {
	case models.ShapeParlay:
		return ParlayBet{Legs: legs, Amount: amount}, nil
	case models.ShapeNumber:
		nb := NumberGameBet{Amount: amount}
		if len(legs) > 0 {
			nb.Game = legs[0].Event
			nb.Selection = legs[0].Selection
			nb.Odds = legs[0].Odds
		}
		return nb, nil
	default:
		sb := SingleBet{Amount: amount}
		if len(legs) > 0 {
			sb.Leg = legs[0]
		}
		return sb, nil
	}
}

// Apply copies the projection onto rec, clipped to the column widths.
func (p Projection) Apply(rec *models.WagerRecord) {
	rec.Shape = p.Shape
	rec.Event = clip(p.Event, textWidth)
	rec.Match = clip(p.Match, textWidth)
	rec.Market = clip(p.Market, marketWidth)
	rec.Selection = clip(p.Selection, textWidth)
	rec.Handicap = clip(p.Handicap, shortWidth)
	rec.Odds = clip(p.Odds, shortWidth)
	rec.Score = clip(p.Score, shortWidth)
	if len(p.Legs) > 0 {
		if raw, err := json.Marshal(p.Legs); err == nil {
			rec.Legs = raw
		}
	}
}

// PlaceholderProjection is used when no detail is available for a record.
func PlaceholderProjection(shape models.Shape) Projection {
	return Projection{
		Shape:     shape,
		Event:     Placeholder,
		Match:     Placeholder,
		Market:    Placeholder,
		Selection: Placeholder,
		Handicap:  Placeholder,
		Odds:      Placeholder,
		Score:     Placeholder,
	}
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// clip drops invalid UTF-8 and keeps at most n runes of s.
func clip(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

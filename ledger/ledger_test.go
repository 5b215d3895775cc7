package ledger

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"sportsledger/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveBetID(t *testing.T) {
	assert.Equal(t, "cancel-op9-1", DeriveBetID(PrefixCancel, "op9", 0))
	assert.Equal(t, "cancel-op9-3", DeriveBetID(PrefixCancel, " op9 ", 2))
	assert.Equal(t, "settle-T1-1", DeriveBetID(PrefixSettle, "T1", -4))
	assert.Equal(t, "bet-%", PrefixBet.Pattern())

	p, ok := PrefixOf("resettle-T1-2")
	assert.True(t, ok)
	assert.Equal(t, PrefixResettle, p)

	_, ok = PrefixOf("payout-T1-2")
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	stake := decimal.NewFromInt(1000)
	tests := []struct {
		payout  string
		cashOut bool
		void    bool
		want    models.Outcome
	}{
		{"1200", false, false, models.OutcomeWin},
		{"1000", false, false, models.OutcomeDraw},
		{"0", false, false, models.OutcomeLose},
		{"0", true, false, models.OutcomeLose},
		{"600", true, false, models.OutcomeCashOut},
		{"500", false, false, models.OutcomeLose},
		{"1000", false, true, models.OutcomeVoid},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v/%v", tt.payout, tt.cashOut, tt.void), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(decimal.RequireFromString(tt.payout), stake, tt.cashOut, tt.void))
		})
	}
}

func TestConverter(t *testing.T) {
	idr := NewConverter("idr", decimal.NewFromInt(1000))
	assert.Equal(t, "IDR", idr.Currency)
	assert.True(t, idr.ToLedger(decimal.RequireFromString("1.2345")).Equal(decimal.NewFromInt(1235)))
	assert.True(t, idr.ToProvider(decimal.NewFromInt(1235)).Equal(decimal.RequireFromString("1.235")))

	usd := NewConverter("USD", decimal.Zero)
	assert.True(t, usd.Factor.Equal(decimal.NewFromInt(1)))
	assert.True(t, usd.ToLedger(decimal.RequireFromString("10.005")).Equal(decimal.RequireFromString("10.01")))
}

func TestClassifyShape(t *testing.T) {
	s, err := ClassifyShape("", 1)
	require.NoError(t, err)
	assert.Equal(t, models.ShapeSingle, s)

	s, err = ClassifyShape(CategorySportsbook, 3)
	require.NoError(t, err)
	assert.Equal(t, models.ShapeParlay, s)

	s, err = ClassifyShape("Number", 1)
	require.NoError(t, err)
	assert.Equal(t, models.ShapeNumber, s)

	_, err = ClassifyShape("casino", 1)
	assert.Equal(t, CodeUnsupportedGame, Code(err))
}

func TestNumberGameProjection(t *testing.T) {
	bet, err := NewBet(CategoryNumberGame, []Leg{{Event: "Happy 5", Selection: "Over"}}, decimal.NewFromInt(10))
	require.NoError(t, err)

	p := bet.Project()
	assert.Equal(t, "Happy 5", p.Event)
	assert.Equal(t, "Over", p.Selection)
	assert.Equal(t, Placeholder, p.Match)
	assert.Equal(t, Placeholder, p.Handicap)
	assert.Equal(t, Placeholder, p.Score)
}

func TestParlayStakeFallsBackToAmount(t *testing.T) {
	bet := ParlayBet{Legs: []Leg{{Selection: "A"}, {Selection: "B", Odds: "x"}}, Amount: decimal.NewFromInt(50)}
	assert.True(t, bet.Stake().Equal(decimal.NewFromInt(50)))
	assert.Equal(t, Placeholder, bet.Project().Odds)
}

func TestApplyClipsToColumnWidths(t *testing.T) {
	long := strings.Repeat("a", 254) + "é"
	bet := ParlayBet{Legs: []Leg{{Selection: long}, {Selection: "B"}}, Amount: decimal.NewFromInt(5)}

	var rec models.WagerRecord
	bet.Project().Apply(&rec)
	assert.True(t, utf8.ValidString(rec.Selection))
	assert.Equal(t, 255, utf8.RuneCountInString(rec.Selection))
	assert.True(t, strings.HasSuffix(rec.Selection, "é"))

	Projection{
		Event:    strings.Repeat("é", 300),
		Market:   strings.Repeat("m", 150),
		Handicap: strings.Repeat("1", 40),
		Odds:     "1.9\xff",
		Score:    strings.Repeat("9", 33),
	}.Apply(&rec)
	assert.Equal(t, 255, utf8.RuneCountInString(rec.Event))
	assert.True(t, utf8.ValidString(rec.Event))
	assert.Len(t, rec.Market, 100)
	assert.Len(t, rec.Handicap, 32)
	assert.Equal(t, "1.9", rec.Odds)
	assert.Len(t, rec.Score, 32)
}

func TestParseProviderTime(t *testing.T) {
	got, ok := ParseProviderTime("2024-05-01T10:00:00")
	require.True(t, ok)
	_, offset := got.Zone()
	assert.Equal(t, -4*3600, offset)

	got, ok = ParseProviderTime("2024-05-01T10:00:00+07:00")
	require.True(t, ok)
	norm := NormalizeBetTime(got, nil, nil)
	assert.Equal(t, "2024-04-30T23:00:00-04:00", norm.Format(time.RFC3339))

	_, ok = ParseProviderTime("yesterday")
	assert.False(t, ok)
}

func TestNormalizeBetTimeZero(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	got := NormalizeBetTime(time.Time{}, ReferenceZone, func() time.Time { return fixed })
	assert.True(t, got.Equal(fixed))
	assert.Equal(t, "2024-01-01T08:00:00-04:00", got.Format(time.RFC3339))
}

func TestCodeAndMessage(t *testing.T) {
	assert.Equal(t, CodeSuccess, Code(nil))
	assert.Equal(t, CodeInternal, Code(errors.New("boom")))
	assert.Equal(t, "Internal Error", Message(errors.New("dial tcp: refused")))

	err := Upstream(errors.New("status 500"))
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, CodeInternal, Code(err))
	assert.Equal(t, "Internal Error", Message(err))

	wrapped := fmt.Errorf("services.Settle: %w", ErrAlreadySettled)
	assert.Equal(t, CodeAlreadySettled, Code(wrapped))
	assert.Equal(t, "Bet Already Settled", Message(wrapped))
}

func TestNewOutstandingEntry(t *testing.T) {
	rec := models.WagerRecord{BetID: "confirm-T1-1", TransactionID: "T1", Flag: models.FlagRunning, Shape: models.ShapeSingle, BetAmount: decimal.NewFromInt(10)}

	e := NewOutstandingEntry(rec, nil)
	assert.False(t, e.Enriched)
	assert.Equal(t, Placeholder, e.Match)

	e = NewOutstandingEntry(rec, &Projection{Match: "A vs B"})
	assert.True(t, e.Enriched)
	assert.Equal(t, "A vs B", e.Match)
	assert.Equal(t, Placeholder, e.Odds)
	assert.Equal(t, models.ShapeSingle, e.Shape)
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Flag is the lifecycle state a wager record represents.
type Flag string

const (
	FlagWaiting   Flag = "waiting"
	FlagRunning   Flag = "running"
	FlagCancelled Flag = "cancelled"
	FlagVoid      Flag = "void"
	FlagSettled   Flag = "settled"
	FlagResettled Flag = "resettled"
	FlagRollback  Flag = "rollback"
	FlagUnsettled Flag = "unsettled"
	FlagBonus     Flag = "bonus"
)

// Outcome is the settlement result attached to a record.
type Outcome string

const (
	OutcomePending Outcome = "-"
	OutcomeWin     Outcome = "win"
	OutcomeLose    Outcome = "lose"
	OutcomeDraw    Outcome = "draw"
	OutcomeCashOut Outcome = "cash out"
	OutcomeVoid    Outcome = "void"
)

// Shape tells which payload variant produced the record.
type Shape string

const (
	ShapeSingle Shape = "single"
	ShapeParlay Shape = "parlay"
	ShapeNumber Shape = "number"
)

// WagerRecord is one row per accepted lifecycle event. Rows are never updated
// after insert except for Active, which flips to false when a newer event
// supersedes the row.
type WagerRecord struct {
	gorm.Model

	BetID         string `gorm:"size:160;uniqueIndex:uk_wager_bet_id"`
	TransactionID string `gorm:"size:100;index"`
	OperationID   string `gorm:"size:100;index"`
	Provider      string `gorm:"size:16;index"`
	PlayerID      string `gorm:"size:100;index"`
	BranchCode    string `gorm:"size:32;index"`
	Currency      string `gorm:"size:8;index"`

	BetAmount    decimal.Decimal `gorm:"type:numeric(20,4);default:0"`
	PayoutAmount decimal.Decimal `gorm:"type:numeric(20,4);default:0"`
	BetTime      time.Time

	Outcome Outcome `gorm:"size:16;default:'-'"`
	Flag    Flag    `gorm:"size:16;index"`
	Active  bool    `gorm:"default:true;index"`

	Shape     Shape  `gorm:"size:16"`
	Event     string `gorm:"size:255"`
	Match     string `gorm:"size:255"`
	Market    string `gorm:"size:100"`
	Selection string `gorm:"size:255"`
	Handicap  string `gorm:"size:32"`
	Odds      string `gorm:"size:32"`
	Score     string `gorm:"size:32"`

	Legs      datatypes.JSON `gorm:"type:jsonb"`
	ExtraInfo datatypes.JSON `gorm:"type:jsonb"`
}

// IsRunning reports whether the stake of the record has been debited and the
// wager is still open.
func (r *WagerRecord) IsRunning() bool {
	return r.Flag == FlagRunning || r.Flag == FlagRollback
}

// IsOutstanding reports whether the record counts towards the running report.
func (r *WagerRecord) IsOutstanding() bool {
	return r.Flag == FlagWaiting || r.Flag == FlagRunning
}

// Successor returns a copy of r for the next lifecycle event: same wager
// identity and descriptive fields, fresh row, active, with flag applied.
func (r WagerRecord) Successor(flag Flag) WagerRecord {
	next := r
	next.Model = gorm.Model{}
	next.BetID = ""
	next.Flag = flag
	next.Active = true
	return next
}

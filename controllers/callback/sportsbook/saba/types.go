package saba

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Envelope is the body of every saba callback.
type Envelope struct {
	Key     string          `json:"key"`
	Message json.RawMessage `json:"message"`
}

type GetBalanceMessage struct {
	Action string `json:"action"`
	UserID string `json:"userId" validate:"required"`
}

type PlaceBetMessage struct {
	Action        string          `json:"action"`
	OperationID   string          `json:"operationId" validate:"required"`
	UserID        string          `json:"userId" validate:"required"`
	RefID         string          `json:"refId" validate:"required"`
	BetTime       string          `json:"betTime"`
	MatchID       int64           `json:"matchId"`
	HomeName      string          `json:"homeName_en"`
	AwayName      string          `json:"awayName_en"`
	LeagueName    string          `json:"leagueName_en"`
	SportTypeName string          `json:"sportTypeName_en"`
	BetTypeName   string          `json:"betTypeName_en"`
	BetChoice     string          `json:"betChoice_en"`
	Point         string          `json:"point"`
	Odds          decimal.Decimal `json:"odds"`
	OddsType      int             `json:"oddsType"`
	IsLive        bool            `json:"isLive"`
	BetAmount     decimal.Decimal `json:"betAmount"`
	ActualAmount  decimal.Decimal `json:"actualAmount"`
	DebitAmount   decimal.Decimal `json:"debitAmount"`
	CreditAmount  decimal.Decimal `json:"creditAmount"`
}

// TicketDetail is one leg of a parlay placement.
type TicketDetail struct {
	MatchID       int64           `json:"matchId"`
	HomeName      string          `json:"homeName_en"`
	AwayName      string          `json:"awayName_en"`
	LeagueName    string          `json:"leagueName_en"`
	SportTypeName string          `json:"sportTypeName_en"`
	BetTypeName   string          `json:"betTypeName_en"`
	BetChoice     string          `json:"betChoice_en"`
	Point         string          `json:"point"`
	Odds          decimal.Decimal `json:"odds"`
}

type ParlayTxn struct {
	RefID      string          `json:"refId" validate:"required"`
	ParlayType string          `json:"parlayType"`
	BetAmount  decimal.Decimal `json:"betAmount"`
}

type PlaceBetParlayMessage struct {
	Action         string          `json:"action"`
	OperationID    string          `json:"operationId" validate:"required"`
	UserID         string          `json:"userId" validate:"required"`
	BetTime        string          `json:"betTime"`
	TotalBetAmount decimal.Decimal `json:"totalBetAmount"`
	Txns           []ParlayTxn     `json:"txns" validate:"required,min=1,dive"`
	TicketDetail   []TicketDetail  `json:"ticketDetail"`
}

type ConfirmTxn struct {
	RefID        string          `json:"refId" validate:"required"`
	TxID         json.Number     `json:"txId"`
	LicenseeTxID string          `json:"licenseeTxId"`
	Odds         decimal.Decimal `json:"odds"`
	ActualAmount decimal.Decimal `json:"actualAmount"`
}

type ConfirmBetMessage struct {
	Action      string       `json:"action"`
	OperationID string       `json:"operationId" validate:"required"`
	UserID      string       `json:"userId" validate:"required"`
	UpdateTime  string       `json:"updateTime"`
	Txns        []ConfirmTxn `json:"txns" validate:"required,min=1,dive"`
}

type CancelTxn struct {
	RefID string `json:"refId" validate:"required"`
}

type CancelBetMessage struct {
	Action      string      `json:"action"`
	OperationID string      `json:"operationId" validate:"required"`
	UserID      string      `json:"userId" validate:"required"`
	Txns        []CancelTxn `json:"txns" validate:"required,min=1,dive"`
}

// SettleTxn is one wager of a settle, resettle or unsettle batch. Each txn
// names its own player.
type SettleTxn struct {
	UserID       string          `json:"userId" validate:"required"`
	RefID        string          `json:"refId" validate:"required"`
	TxID         json.Number     `json:"txId"`
	Status       string          `json:"status"`
	Payout       decimal.Decimal `json:"payout"`
	WinlostDate  string          `json:"winlostDate"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
}

type SettleMessage struct {
	Action      string      `json:"action"`
	OperationID string      `json:"operationId" validate:"required"`
	Txns        []SettleTxn `json:"txns" validate:"required,min=1,dive"`
}

type BalanceInfo struct {
	CreditAmount decimal.Decimal `json:"creditAmount"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
}

type AdjustBalanceMessage struct {
	Action      string      `json:"action"`
	OperationID string      `json:"operationId" validate:"required"`
	UserID      string      `json:"userId" validate:"required"`
	TxID        json.Number `json:"txId"`
	RefID       string      `json:"refId"`
	Time        string      `json:"time"`
	BetType     int         `json:"betType"`
	BalanceInfo BalanceInfo `json:"balanceInfo"`
}

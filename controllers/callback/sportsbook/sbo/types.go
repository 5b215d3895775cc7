package sbo

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type GetBalanceRequest struct {
	CompanyKey string `json:"CompanyKey"`
	Username   string `json:"Username" validate:"required"`
}

type GetBetStatusRequest struct {
	CompanyKey    string `json:"CompanyKey"`
	Username      string `json:"Username" validate:"required"`
	TransferCode  string `json:"TransferCode" validate:"required"`
	TransactionId string `json:"TransactionId"`
	ProductType   int    `json:"ProductType"`
	GameType      int    `json:"GameType"`
}

type DeductRequest struct {
	CompanyKey      string          `json:"CompanyKey"`
	Username        string          `json:"Username" validate:"required"`
	Amount          decimal.Decimal `json:"Amount"`
	TransferCode    string          `json:"TransferCode" validate:"required"`
	TransactionId   string          `json:"TransactionId"`
	BetTime         string          `json:"BetTime"`
	ProductType     int             `json:"ProductType"`
	GameType        int             `json:"GameType"`
	GameTypeName    string          `json:"GameTypeName"`
	GameId          int             `json:"GameId"`
	OrderDetail     string          `json:"OrderDetail"`
	ExtraInfo       json.RawMessage `json:"ExtraInfo"`
	CommissionStake decimal.Decimal `json:"CommissionStake"`
}

type SettleRequest struct {
	CompanyKey      string          `json:"CompanyKey"`
	Username        string          `json:"Username" validate:"required"`
	TransferCode    string          `json:"TransferCode" validate:"required"`
	TransactionId   string          `json:"TransactionId"`
	WinLoss         decimal.Decimal `json:"WinLoss"`
	ResultType      int             `json:"ResultType"` // 0 win, 1 lose, 2 draw
	ResultTime      string          `json:"ResultTime"`
	ProductType     int             `json:"ProductType"`
	GameType        int             `json:"GameType"`
	CommissionStake decimal.Decimal `json:"CommissionStake"`
	IsCashOut       bool            `json:"IsCashOut"`
	ExtraInfo       json.RawMessage `json:"ExtraInfo"`
}

type CancelRequest struct {
	CompanyKey    string `json:"CompanyKey"`
	Username      string `json:"Username" validate:"required"`
	TransferCode  string `json:"TransferCode" validate:"required"`
	TransactionId string `json:"TransactionId"`
	ProductType   int    `json:"ProductType"`
	GameType      int    `json:"GameType"`
	IsCancelAll   bool   `json:"IsCancelAll"`
}

type RollbackRequest struct {
	CompanyKey    string `json:"CompanyKey"`
	Username      string `json:"Username" validate:"required"`
	TransferCode  string `json:"TransferCode" validate:"required"`
	TransactionId string `json:"TransactionId"`
	ProductType   int    `json:"ProductType"`
	GameType      int    `json:"GameType"`
}

type BonusRequest struct {
	CompanyKey    string          `json:"CompanyKey"`
	Username      string          `json:"Username" validate:"required"`
	Amount        decimal.Decimal `json:"Amount"`
	BonusTime     string          `json:"BonusTime"`
	TransferCode  string          `json:"TransferCode" validate:"required"`
	TransactionId string          `json:"TransactionId"`
	ProductType   int             `json:"ProductType"`
	GameType      int             `json:"GameType"`
	ExtraInfo     json.RawMessage `json:"ExtraInfo"`
}

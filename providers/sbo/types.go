package sbo

import (
	"strings"
	"time"
)

// WinTime reads the millisecond timestamps without offset the report API
// returns.
type WinTime struct {
	time.Time
}

func (wt *WinTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" || s == "0001-01-01T00:00:00" {
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.000", "2006-01-02T15:04:05", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			wt.Time = t
			return nil
		}
	}
	_, err := time.Parse("2006-01-02T15:04:05.000", s)
	return err
}

// APIError is the envelope every sbo API response carries; id 0 is success.
type APIError struct {
	ID  int    `json:"id"`
	Msg string `json:"msg"`
}

type Bet struct {
	RefNo         string   `json:"refNo"`
	Username      string   `json:"username"`
	SportsType    string   `json:"sportsType"`
	OrderTime     WinTime  `json:"orderTime"`
	WinLostDate   WinTime  `json:"winLostDate"`
	SettleTime    WinTime  `json:"settleTime"`
	ModifyDate    WinTime  `json:"modifyDate"`
	Odds          float64  `json:"odds"`
	OddsStyle     string   `json:"oddsStyle"`
	Stake         float64  `json:"stake"`
	ActualStake   float64  `json:"actualStake"`
	Currency      string   `json:"currency"`
	Status        string   `json:"status"`
	WinLost       float64  `json:"winLost"`
	IsHalfWonLose bool     `json:"isHalfWonLose"`
	IsCashOut     bool     `json:"isCashOut"`
	IsLive        bool     `json:"isLive"`
	VoidReason    string   `json:"voidReason"`
	SubBets       []SubBet `json:"subBet"`
}

type SubBet struct {
	BetOption     string  `json:"betOption"`
	MarketType    string  `json:"marketType"`
	Hdp           float64 `json:"hdp"`
	Odds          float64 `json:"odds"`
	League        string  `json:"league"`
	Match         string  `json:"match"`
	Status        string  `json:"status"`
	WinLostDate   WinTime `json:"winlostDate"`
	LiveScore     string  `json:"liveScore"`
	HtScore       string  `json:"htScore"`
	FtScore       string  `json:"ftScore"`
	KickOffTime   WinTime `json:"kickOffTime"`
	IsHalfWonLose bool    `json:"isHalfWonLose"`
}

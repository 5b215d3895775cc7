// Package saba talks to the saba sportsbook API: member creation, launch
// URLs and bet details.
package saba

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sportsledger/config"
	"sportsledger/ledger"
	"sportsledger/logger"
	"sportsledger/metrics"
	"sportsledger/models"
	"sportsledger/providers"

	"github.com/shopspring/decimal"
)

const Name = "saba"

const (
	codeSuccess      = 0
	codeMemberExists = 6
	oddsTypeDecimal  = 1
	platformDesktop  = 1
	platformMobile   = 2
)

var ErrBetNotFound = errors.New("saba: bet not found")

// envelope is the shape of every saba API response.
type envelope struct {
	ErrorCode int             `json:"error_code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"Data"`
}

type Client struct {
	cfg  config.ProviderConfig
	http *http.Client
}

func NewClient(cfg config.ProviderConfig) *Client {
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// StartGame makes sure the member exists and returns its sportsbook URL.
func (c *Client) StartGame(ctx context.Context, req providers.LaunchRequest) (string, error) {
	cred, err := c.cfg.CredentialsByCurrency(req.Currency)
	if err != nil {
		return "", err
	}
	if err := c.CreateMember(ctx, cred, req.UserCode); err != nil {
		return "", err
	}

	platform := platformDesktop
	if req.Platform == "mobile" {
		platform = platformMobile
	}
	form := url.Values{
		"vendor_id":        {cred.VendorID},
		"platform":         {fmt.Sprint(platform)},
		"Vendor_Member_ID": {req.UserCode},
	}
	env, err := c.post(ctx, cred, "GetSabaUrl", form)
	if err != nil {
		return "", err
	}
	if env.ErrorCode != codeSuccess {
		return "", providers.ThirdParty("saba.StartGame", fmt.Errorf("error %d %s", env.ErrorCode, env.Message))
	}
	var launch string
	if err := json.Unmarshal(env.Data, &launch); err != nil || launch == "" {
		return "", providers.ThirdParty("saba.StartGame", errors.New("no launch url returned"))
	}

	lang := req.Lang
	if lang == "" {
		lang = "en"
	}
	return launch + "&lang=" + url.QueryEscape(lang), nil
}

// CreateMember registers userCode with saba; an existing member is fine.
func (c *Client) CreateMember(ctx context.Context, cred config.Credentials, userCode string) error {
	form := url.Values{
		"vendor_id":        {cred.VendorID},
		"OperatorId":       {cred.OperatorID},
		"Vendor_Member_ID": {userCode},
		"UserName":         {userCode},
		"OddsType":         {fmt.Sprint(oddsTypeDecimal)},
		"Currency":         {cred.Currency},
	}
	env, err := c.post(ctx, cred, "CreateMember", form)
	if err != nil {
		return err
	}
	if env.ErrorCode != codeSuccess && env.ErrorCode != codeMemberExists {
		return providers.ThirdParty("saba.CreateMember", fmt.Errorf("error %d %s", env.ErrorCode, env.Message))
	}
	return nil
}

// BetDetail is one ticket as returned by GetBetDetailByTransID.
type BetDetail struct {
	TransID       json.Number     `json:"trans_id"`
	VendorMember  string          `json:"vendor_member_id"`
	SportTypeName string          `json:"sport_type_name"`
	LeagueName    string          `json:"leaguename"`
	HomeName      string          `json:"hometeamname"`
	AwayName      string          `json:"awayteamname"`
	BetTypeName   string          `json:"bet_type_name"`
	BetTeam       string          `json:"bet_team"`
	Hdp           json.Number     `json:"hdp"`
	Odds          json.Number     `json:"odds"`
	HomeScore     *int            `json:"home_score"`
	AwayScore     *int            `json:"away_score"`
	Stake         decimal.Decimal `json:"stake"`
	TicketStatus  string          `json:"ticket_status"`
	ParlayData    []ParlayLeg     `json:"ParlayData"`
}

type ParlayLeg struct {
	LeagueName  string      `json:"leaguename"`
	HomeName    string      `json:"hometeamname"`
	AwayName    string      `json:"awayteamname"`
	BetTypeName string      `json:"bet_type_name"`
	BetTeam     string      `json:"bet_team"`
	Hdp         json.Number `json:"hdp"`
	Odds        json.Number `json:"odds"`
	HomeScore   *int        `json:"home_score"`
	AwayScore   *int        `json:"away_score"`
	Status      string      `json:"ticket_status"`
}

// GetBetDetail looks the wager up by the saba ticket id recorded at
// confirmation, falling back to the reference id.
func (c *Client) GetBetDetail(ctx context.Context, cred config.Credentials, rec models.WagerRecord) (*ledger.Projection, error) {
	transID := TicketID(rec)
	form := url.Values{
		"vendor_id": {cred.VendorID},
		"trans_id":  {transID},
	}
	env, err := c.post(ctx, cred, "GetBetDetailByTransID", form)
	if err != nil {
		return nil, err
	}
	if env.ErrorCode != codeSuccess {
		return nil, providers.ThirdParty("saba.GetBetDetail", fmt.Errorf("error %d %s", env.ErrorCode, env.Message))
	}

	var data struct {
		BetDetails []BetDetail `json:"BetDetails"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, providers.ThirdParty("saba.GetBetDetail", fmt.Errorf("decode: %w", err))
	}
	if len(data.BetDetails) == 0 {
		return nil, fmt.Errorf("saba.GetBetDetail %s: %w", transID, ErrBetNotFound)
	}
	p, err := data.BetDetails[0].Project()
	if err != nil {
		return nil, fmt.Errorf("saba.GetBetDetail: %w", err)
	}
	return &p, nil
}

// Project maps a ticket onto the descriptive fields of a record.
func (d BetDetail) Project() (ledger.Projection, error) {
	var legs []ledger.Leg
	for _, l := range d.ParlayData {
		legs = append(legs, ledger.Leg{
			Event:     l.LeagueName,
			Match:     matchName(l.HomeName, l.AwayName),
			Market:    l.BetTypeName,
			Selection: l.BetTeam,
			Handicap:  l.Hdp.String(),
			Odds:      l.Odds.String(),
			Score:     score(l.HomeScore, l.AwayScore),
			Status:    l.Status,
		})
	}
	if len(legs) == 0 {
		legs = []ledger.Leg{{
			Event:     d.LeagueName,
			Match:     matchName(d.HomeName, d.AwayName),
			Market:    d.BetTypeName,
			Selection: d.BetTeam,
			Handicap:  d.Hdp.String(),
			Odds:      d.Odds.String(),
			Score:     score(d.HomeScore, d.AwayScore),
			Status:    d.TicketStatus,
		}}
	}
	bet, err := ledger.NewBet(Category(d.SportTypeName), legs, d.Stake)
	if err != nil {
		return ledger.Projection{}, err
	}
	return bet.Project(), nil
}

// Category maps a saba sport type name onto a ledger game category.
func Category(sportTypeName string) string {
	if strings.Contains(strings.ToLower(sportTypeName), "number") {
		return ledger.CategoryNumberGame
	}
	return ledger.CategorySportsbook
}

// TicketID returns the saba ticket id stored in the record extras, or the
// transaction id when the wager was never confirmed.
func TicketID(rec models.WagerRecord) string {
	var extra struct {
		TxID json.Number `json:"txId"`
	}
	if len(rec.ExtraInfo) > 0 && json.Unmarshal(rec.ExtraInfo, &extra) == nil && extra.TxID != "" {
		return extra.TxID.String()
	}
	return rec.TransactionID
}

func matchName(home, away string) string {
	if home == "" && away == "" {
		return ""
	}
	return home + " vs " + away
}

func score(home, away *int) string {
	if home == nil || away == nil {
		return ""
	}
	return fmt.Sprintf("%d:%d", *home, *away)
}

func (c *Client) post(ctx context.Context, cred config.Credentials, call string, form url.Values) (env envelope, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordGatewayCall(Name, call, start, err)
		if err != nil {
			logger.Warn(ctx).Err(err).Str("provider", Name).Str("call", call).Msg("provider call failed")
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cred.APIURL+"/"+call+"/", strings.NewReader(form.Encode()))
	if err != nil {
		return env, fmt.Errorf("saba %s: %w", call, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return env, providers.ThirdParty("saba "+call, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return env, providers.ThirdParty("saba "+call, err)
	}
	if resp.StatusCode != http.StatusOK {
		return env, providers.ThirdParty("saba "+call, fmt.Errorf("http status %s", resp.Status))
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, providers.ThirdParty("saba "+call, fmt.Errorf("decode: %w", err))
	}
	return env, nil
}

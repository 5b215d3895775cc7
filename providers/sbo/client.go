// Package sbo talks to the sbo sportsbook: player login, bet reports and
// the seamless-wallet resend queue.
package sbo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sportsledger/config"
	"sportsledger/ledger"
	"sportsledger/logger"
	"sportsledger/metrics"
	"sportsledger/models"
	"sportsledger/providers"
)

const (
	Name = "sbo"

	loginPath      = "/web-root/restricted/player/login.aspx"
	betListPath    = "/web-root/restricted/report/get-bet-list-by-refnos.aspx"
	resendPath     = "/web-root/restricted/seamless-wallet/resend-order"
	portfolio      = "SportsBook"
	loginPortfolio = "ThirdPartySportsBook"
	gamePlatformID = "1022"
)

var ErrBetNotFound = errors.New("sbo: bet not found")

type Client struct {
	cfg  config.ProviderConfig
	http *http.Client
}

func NewClient(cfg config.ProviderConfig) *Client {
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// StartGame logs the player in and returns the sportsbook URL.
func (c *Client) StartGame(ctx context.Context, req providers.LaunchRequest) (string, error) {
	cred, err := c.cfg.CredentialsByCurrency(req.Currency)
	if err != nil {
		return "", err
	}

	var result struct {
		URL   string   `json:"url"`
		Error APIError `json:"error"`
	}
	payload := map[string]any{
		"CompanyKey": cred.VendorID,
		"ServerId":   cred.OperatorID,
		"Username":   req.UserCode,
		"Portfolio":  loginPortfolio,
	}
	if err := c.post(ctx, "login", cred.LaunchURL+loginPath, payload, &result); err != nil {
		return "", err
	}
	if result.Error.ID != 0 {
		return "", providers.ThirdParty("sbo.StartGame", fmt.Errorf("error %d %s", result.Error.ID, result.Error.Msg))
	}
	if result.URL == "" {
		return "", providers.ThirdParty("sbo.StartGame", errors.New("no login url returned"))
	}

	device := "d"
	if req.Platform == "mobile" {
		device = "m"
	}
	lang := req.Lang
	if lang == "" {
		lang = "en"
	}
	return fmt.Sprintf("https://%s&lang=%s&gpId=%s&device=%s", result.URL, lang, gamePlatformID, device), nil
}

// GetBetListByReferenceNumbers fetches the reported bets for refNos.
func (c *Client) GetBetListByReferenceNumbers(ctx context.Context, cred config.Credentials, refNos []string) ([]Bet, error) {
	var result struct {
		Result []Bet    `json:"result"`
		Error  APIError `json:"error"`
	}
	payload := map[string]any{
		"refNos":     strings.Join(refNos, ","),
		"portfolio":  portfolio,
		"language":   "en",
		"companyKey": cred.VendorID,
		"serverId":   cred.OperatorID,
	}
	if err := c.post(ctx, "bet_list", cred.APIURL+betListPath, payload, &result); err != nil {
		return nil, err
	}
	if result.Error.ID != 0 {
		return nil, providers.ThirdParty("sbo.GetBetList", fmt.Errorf("error %d %s", result.Error.ID, result.Error.Msg))
	}
	return result.Result, nil
}

// GetBetDetail projects the reported view of a wager's transfer code.
func (c *Client) GetBetDetail(ctx context.Context, cred config.Credentials, rec models.WagerRecord) (*ledger.Projection, error) {
	transactionID := rec.TransactionID
	bets, err := c.GetBetListByReferenceNumbers(ctx, cred, []string{transactionID})
	if err != nil {
		return nil, err
	}
	for _, b := range bets {
		if b.RefNo != transactionID {
			continue
		}
		p, err := b.Project()
		if err != nil {
			return nil, fmt.Errorf("sbo.GetBetDetail: %w", err)
		}
		return &p, nil
	}
	return nil, fmt.Errorf("sbo.GetBetDetail %s: %w", transactionID, ErrBetNotFound)
}

// ResendOrders asks sbo to replay the wallet callbacks of txnIDs.
func (c *Client) ResendOrders(ctx context.Context, cred config.Credentials, txnIDs []string) error {
	if len(txnIDs) == 0 {
		return nil
	}
	var result struct {
		Error APIError `json:"error"`
	}
	payload := map[string]any{
		"txnId":      strings.Join(txnIDs, ","),
		"portfolio":  portfolio,
		"companyKey": cred.VendorID,
		"serverId":   cred.OperatorID,
	}
	if err := c.post(ctx, "resend", cred.APIURL+resendPath, payload, &result); err != nil {
		return err
	}
	if result.Error.ID != 0 {
		return providers.ThirdParty("sbo.ResendOrders", fmt.Errorf("error %d %s", result.Error.ID, result.Error.Msg))
	}
	return nil
}

func (c *Client) post(ctx context.Context, call, url string, payload, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordGatewayCall(Name, call, start, err)
		if err != nil {
			logger.Warn(ctx).Err(err).Str("provider", Name).Str("call", call).Msg("provider call failed")
		}
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sbo %s: encode: %w", call, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sbo %s: %w", call, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return providers.ThirdParty("sbo "+call, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return providers.ThirdParty("sbo "+call, err)
	}
	if resp.StatusCode != http.StatusOK {
		return providers.ThirdParty("sbo "+call, fmt.Errorf("http status %s", resp.Status))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return providers.ThirdParty("sbo "+call, fmt.Errorf("decode: %w", err))
	}
	return nil
}

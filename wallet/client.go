package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sportsledger/logger"
	"sportsledger/metrics"
)

// Client calls the wallet service over HTTP/JSON.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Balance(ctx context.Context, req Request) (Result, error) {
	return c.call(ctx, "balance", req)
}

func (c *Client) Wager(ctx context.Context, req Request) (Result, error) {
	return c.call(ctx, "wager", req)
}

func (c *Client) Payout(ctx context.Context, req Request) (Result, error) {
	return c.call(ctx, "payout", req)
}

func (c *Client) Resettle(ctx context.Context, req Request) (Result, error) {
	return c.call(ctx, "resettle", req)
}

func (c *Client) TransferIn(ctx context.Context, req Request) (Result, error) {
	return c.call(ctx, "transferIn", req)
}

func (c *Client) TransferOut(ctx context.Context, req Request) (Result, error) {
	return c.call(ctx, "transferOut", req)
}

func (c *Client) call(ctx context.Context, op string, req Request) (res Result, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordGatewayCall("wallet", op, start, err)
		ev := logger.Debug(ctx)
		if err != nil {
			ev = logger.Warn(ctx).Err(err)
		}
		ev.Str("wallet_op", op).
			Str("transaction_id", req.TransactionID).
			Str("player_id", req.PlayerID).
			Str("amount", req.Amount.String()).
			Int("status_code", res.StatusCode).
			Dur("elapsed", time.Since(start)).
			Msg("wallet call")
	}()

	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("wallet %s: encode: %w", op, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/"+op, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("wallet %s: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("X-Api-Key", c.APIKey)
	}
	if id := logger.GetRequestID(ctx); id != "" {
		httpReq.Header.Set("X-Request-ID", id)
	}

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("wallet %s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("wallet %s: read: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("wallet %s: http status %s", op, resp.Status)
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return Result{}, fmt.Errorf("wallet %s: decode: %w", op, err)
	}
	if !res.OK() {
		return res, fmt.Errorf("wallet %s: status %d %s: %w", op, res.StatusCode, res.Message, ErrRejected)
	}
	return res, nil
}

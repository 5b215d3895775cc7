package middlewares_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"sportsledger/config"
	"sportsledger/logger"
	"sportsledger/middlewares"
	"sportsledger/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, app *fiber.App, path, body string, headers map[string]string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(raw)
}

func ok(c *fiber.Ctx) error { return c.SendString("ok") }

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(middlewares.RequestID())
	app.Post("/", func(c *fiber.Ctx) error {
		return c.SendString(logger.GetRequestID(c.UserContext()))
	})

	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set(middlewares.RequestIDHeader, "req-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "req-42", string(raw))
	assert.Equal(t, "req-42", resp.Header.Get(middlewares.RequestIDHeader))

	_, body := post(t, app, "/", "", nil)
	assert.Len(t, body, 36)
}

func TestSboAuth(t *testing.T) {
	app := fiber.New()
	cfg := config.ProviderConfig{Name: "sbo", ByCurrency: map[string]config.Credentials{"IDR": {VendorID: "ck"}}}
	app.Post("/", middlewares.SboAuth(cfg), ok)

	_, body := post(t, app, "/", `{"CompanyKey":"ck"}`, nil)
	assert.Equal(t, "ok", body)

	_, body = post(t, app, "/", `{"CompanyKey":"nope"}`, nil)
	assert.JSONEq(t, `{"ErrorCode":4,"ErrorMessage":"CompanyKey Error","Balance":0}`, body)

	_, body = post(t, app, "/", `{`, nil)
	assert.Contains(t, body, `"ErrorCode":3`)
}

type branches map[string]models.Branch

func (b branches) FindBranch(_ context.Context, code string) (*models.Branch, error) {
	br, ok := b[code]
	if !ok {
		return nil, errors.New("not found")
	}
	return &br, nil
}

func TestBranchAuth(t *testing.T) {
	app := fiber.New()
	store := branches{
		"0abc": {BranchCode: "0abc", SecretKey: "s3cret", IsActive: true},
		"0off": {BranchCode: "0off", SecretKey: "s3cret", IsActive: false},
	}
	app.Post("/", middlewares.BranchAuth(store), func(c *fiber.Ctx) error {
		b, _ := middlewares.CurrentBranch(c)
		return c.SendString(b.BranchCode)
	})

	status, body := post(t, app, "/", "", map[string]string{"X-Branch-Code": "0abc", "X-Secret-Key": "s3cret"})
	assert.Equal(t, 200, status)
	assert.Equal(t, "0abc", body)

	status, _ = post(t, app, "/", "", map[string]string{"X-Branch-Code": "0abc", "X-Secret-Key": "wrong"})
	assert.Equal(t, 401, status)

	status, _ = post(t, app, "/", "", map[string]string{"X-Branch-Code": "0off", "X-Secret-Key": "s3cret"})
	assert.Equal(t, 401, status)

	status, body = post(t, app, "/", "", nil)
	assert.Equal(t, 401, status)
	assert.Contains(t, body, "BRANCH_CODE_AND_SECRET_REQUIRED")
}

func TestMasterAuth(t *testing.T) {
	cfg := config.MasterConfig{Code: "master", Secret: "topsecret"}
	app := fiber.New()
	app.Post("/", middlewares.MasterAuth(cfg), ok)

	_, body := post(t, app, "/", `{"signature":"`+middlewares.MasterSignature(cfg)+`"}`, nil)
	assert.Equal(t, "ok", body)

	status, _ := post(t, app, "/", `{"signature":"forged"}`, nil)
	assert.Equal(t, 401, status)
}

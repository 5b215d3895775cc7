package user_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sportsledger/controllers/user"
	"sportsledger/database/dbtest"
	"sportsledger/middlewares"
	"sportsledger/models"
	"sportsledger/providers"
	"sportsledger/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLauncher struct {
	fail bool
	got  providers.LaunchRequest
}

func (f *fakeLauncher) StartGame(_ context.Context, req providers.LaunchRequest) (string, error) {
	f.got = req
	if f.fail {
		return "", errors.New("provider down")
	}
	return "//launch.example/play?u=" + req.UserCode, nil
}

type response struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func setup(t *testing.T) (*fiber.App, *store.PlayerStore, *fakeLauncher) {
	t.Helper()
	players := store.NewPlayerStore(dbtest.Open(t))
	require.NoError(t, players.CreateBranch(context.Background(), &models.Branch{Username: "b1", BranchCode: "0abc", SecretKey: "s3cret", Currency: "IDR", IsActive: true}))

	launcher := &fakeLauncher{}
	reg := providers.NewRegistry()
	reg.Register("sbo", launcher)

	h := user.NewHandler(players, reg)
	app := fiber.New()
	grp := app.Group("/user", middlewares.BranchAuth(players))
	grp.Post("/register", h.Register)
	grp.Post("/games/start", h.StartGame)
	return app, players, launcher
}

func post(t *testing.T, app *fiber.App, path, body string) (int, response) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Branch-Code", "0abc")
	req.Header.Set("X-Secret-Key", "s3cret")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestRegister(t *testing.T) {
	app, players, _ := setup(t)

	status, out := post(t, app, "/user/register", `{"user_code":"Alice","country":"id","currency":"idr"}`)
	require.Equal(t, 200, status, out.Message)
	assert.Equal(t, "0abc_alice", out.Data["user_code"])

	p, err := players.FindPlayer(context.Background(), "0abc_alice")
	require.NoError(t, err)
	assert.Equal(t, "IDR", p.Currency)
	assert.True(t, p.IsActive)

	status, out = post(t, app, "/user/register", `{"user_code":"alice","country":"ID","currency":"IDR"}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "USER_ALREADY_EXISTS", out.Message)

	_, out = post(t, app, "/user/register", `{"user_code":"bob","country":"ID","currency":"MYR"}`)
	assert.Equal(t, "INVALID_CURRENCY_FOR_COUNTRY", out.Message)

	_, out = post(t, app, "/user/register", `{"user_code":"bob","country":"FR","currency":"EUR"}`)
	assert.Equal(t, "UNSUPPORTED_COUNTRY", out.Message)

	status, out = post(t, app, "/user/register", `{"country":"ID"}`)
	assert.Equal(t, 422, status)
	assert.Equal(t, "VALIDATION_FAILED", out.Message)
}

func TestStartGame(t *testing.T) {
	app, players, launcher := setup(t)
	ctx := context.Background()
	require.NoError(t, players.CreatePlayer(ctx, &models.Player{UserCode: "0abc_alice", BranchCode: "0abc", Currency: "IDR", IsActive: true}))

	status, out := post(t, app, "/user/games/start", `{"user_code":"alice","provider_code":"SBO","platform":"mobile"}`)
	require.Equal(t, 200, status, out.Message)
	assert.Equal(t, "https://launch.example/play?u=0abc_alice", out.Data["launch_url"])
	assert.Equal(t, "IDR", launcher.got.Currency)

	sid, _ := out.Data["session_id"].(string)
	require.NotEmpty(t, sid)
	sess, err := players.FindSession(ctx, sid, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "sbo", sess.Provider)
	assert.Equal(t, "0abc_alice", sess.Player.UserCode)

	_, out = post(t, app, "/user/games/start", `{"user_code":"alice","provider_code":"nope"}`)
	assert.Equal(t, "UNSUPPORTED_PROVIDER", out.Message)

	status, _ = post(t, app, "/user/games/start", `{"user_code":"ghost","provider_code":"sbo"}`)
	assert.Equal(t, 404, status)

	launcher.fail = true
	status, out = post(t, app, "/user/games/start", `{"user_code":"alice","provider_code":"sbo"}`)
	assert.Equal(t, 502, status)
	assert.Equal(t, "FAILED_TO_START_GAME", out.Message)
}

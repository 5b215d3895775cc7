package branch_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"sportsledger/controllers/branch"
	"sportsledger/database/dbtest"
	"sportsledger/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	players := store.NewPlayerStore(dbtest.Open(t))
	app := fiber.New()
	app.Post("/branch/register", branch.NewHandler(players).Register)

	req := httptest.NewRequest("POST", "/branch/register", strings.NewReader(`{"username":"b1","currency":"idr"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var out struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	code := out.Data["branch_code"]
	assert.Len(t, code, 4)
	assert.True(t, strings.HasPrefix(code, "0"))
	assert.Equal(t, "IDR", out.Data["currency"])
	assert.NotEmpty(t, out.Data["secret_key"])

	b, err := players.FindBranch(req.Context(), code)
	require.NoError(t, err)
	assert.Equal(t, "b1", b.Username)

	req = httptest.NewRequest("POST", "/branch/register", strings.NewReader(`{"currency":"idr"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 422, resp.StatusCode)
}

package user

import (
	"errors"
	"slices"
	"strings"

	"sportsledger/helpers"
	"sportsledger/logger"
	"sportsledger/middlewares"
	"sportsledger/models"
	"sportsledger/store"

	"github.com/gofiber/fiber/v2"
)

type RegisterUserRequest struct {
	UserCode string `json:"user_code" validate:"required,max=40"`
	Country  string `json:"country" validate:"required"`
	Currency string `json:"currency" validate:"required"`
}

// Currencies a player may hold per country.
var allowedCountryCurrencies = map[string][]string{
	"ID": {"IDR", "USD"},
	"MY": {"MYR", "USD"},
	"TH": {"THB", "USD"},
	"VN": {"VND", "USD"},
	"KH": {"KHR", "USD"},
	"US": {"USD"},
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if errs := helpers.Validate(req); len(errs) > 0 {
		return helpers.JSONInvalid(c, errs)
	}

	branch, ok := middlewares.CurrentBranch(c)
	if !ok {
		return helpers.JSONError(c, "INVALID_BRANCH_SESSION")
	}

	country := strings.ToUpper(strings.TrimSpace(req.Country))
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))

	allowed, ok := allowedCountryCurrencies[country]
	if !ok {
		return helpers.JSONError(c, "UNSUPPORTED_COUNTRY")
	}
	if !slices.Contains(allowed, currency) {
		return helpers.JSONError(c, "INVALID_CURRENCY_FOR_COUNTRY")
	}

	player := models.Player{
		UserCode:   playerCode(branch.BranchCode, req.UserCode),
		BranchCode: branch.BranchCode,
		Country:    country,
		Currency:   currency,
		IsActive:   true,
	}

	ctx := c.UserContext()
	if err := h.players.CreatePlayer(ctx, &player); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return helpers.JSONError(c, "USER_ALREADY_EXISTS")
		}
		logger.Error(ctx).Err(err).Str("user_code", player.UserCode).Msg("create player failed")
		return helpers.JSONError(c, "FAILED_TO_REGISTER_USER")
	}

	return helpers.JSONSuccess(c, "User registered successfully", fiber.Map{
		"user_code":   player.UserCode,
		"branch_code": player.BranchCode,
		"country":     player.Country,
		"currency":    player.Currency,
	})
}

// playerCode scopes a branch-local user code to the branch. Codes already
// carrying the branch prefix are kept.
func playerCode(branchCode, userCode string) string {
	prefix := strings.ToLower(branchCode) + "_"
	code := strings.ToLower(strings.TrimSpace(userCode))
	if strings.HasPrefix(code, prefix) {
		return code
	}
	return prefix + code
}

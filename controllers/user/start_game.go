package user

import (
	"errors"
	"strings"
	"time"

	"sportsledger/helpers"
	"sportsledger/logger"
	"sportsledger/middlewares"
	"sportsledger/models"
	"sportsledger/providers"
	"sportsledger/store"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) StartGame(c *fiber.Ctx) error {
	var req providers.LaunchRequest
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

	ctx := c.UserContext()
	player, err := h.players.FindPlayer(ctx, playerCode(branch.BranchCode, req.UserCode))
	if errors.Is(err, store.ErrNotFound) || (err == nil && (player.BranchCode != branch.BranchCode || !player.IsActive)) {
		return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "USER_NOT_FOUND", nil)
	}
	if err != nil {
		logger.Error(ctx).Err(err).Msg("find player failed")
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_START_GAME", nil)
	}

	launcher, err := h.launchers.Get(req.ProviderCode)
	if err != nil {
		return helpers.JSONError(c, "UNSUPPORTED_PROVIDER")
	}

	req.UserCode = player.UserCode
	req.Currency = player.Currency
	if req.IP == "" {
		req.IP = c.IP()
	}
	launchURL, err := launcher.StartGame(ctx, req)
	if err != nil {
		logger.Warn(ctx).Err(err).Str("provider", req.ProviderCode).Str("user_code", player.UserCode).Msg("game launch failed")
		return helpers.JSONErrorStatus(c, fiber.StatusBadGateway, "FAILED_TO_START_GAME", nil)
	}
	if strings.HasPrefix(launchURL, "//") {
		launchURL = "https:" + launchURL
	}

	sess := models.Session{
		PlayerID:  player.ID,
		Provider:  strings.ToLower(req.ProviderCode),
		LaunchURL: launchURL,
		ExpiresAt: h.now().Add(h.sessionTTL),
	}
	if err := h.players.CreateSession(ctx, &sess); err != nil {
		logger.Error(ctx).Err(err).Msg("create session failed")
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_START_GAME", nil)
	}

	return helpers.JSONSuccess(c, "Game launched successfully", fiber.Map{
		"launch_url": launchURL,
		"session_id": sess.SID,
		"expires_at": sess.ExpiresAt.Format(time.RFC3339),
	})
}

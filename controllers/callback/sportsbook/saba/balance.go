package saba

import (
	"time"

	"sportsledger/services"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetBalance(c *fiber.Ctx) error {
	var msg GetBalanceMessage
	key, ok := h.decode(c, &msg)
	if !ok {
		return nil
	}

	res, err := h.ledger.Balance(c.UserContext(), services.Caller{Key: key, PlayerID: msg.UserID})
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, fiber.Map{
		"userId":    msg.UserID,
		"balance":   res.Balance.InexactFloat64(),
		"balanceTs": time.Now().In(time.UTC).Format(time.RFC3339),
	})
}

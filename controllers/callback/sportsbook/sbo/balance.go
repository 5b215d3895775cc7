package sbo

import (
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetBalance(c *fiber.Ctx) error {
	var req GetBalanceRequest
	if !h.parse(c, &req) {
		return nil
	}

	who := caller(req.CompanyKey, req.Username)
	res, err := h.ledger.Balance(c.UserContext(), who)
	if err != nil {
		return h.fail(c, who, err)
	}
	return h.reply(c, who, res, nil)
}

package sbo

import (
	"strings"

	"sportsledger/ledger"
	"sportsledger/services"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Bonus(c *fiber.Ctx) error {
	var req BonusRequest
	if !h.parse(c, &req) {
		return nil
	}

	who := caller(req.CompanyKey, req.Username)
	bonusTime, _ := ledger.ParseProviderTime(req.BonusTime)
	res, err := h.ledger.Adjust(c.UserContext(), services.AdjustRequest{
		Caller:        who,
		TransactionID: strings.TrimSpace(req.TransferCode),
		OperationID:   operationID(req.TransactionId, req.TransferCode),
		Credit:        req.Amount,
		Time:          bonusTime,
		ExtraInfo:     req.ExtraInfo,
	})
	if err != nil {
		return h.fail(c, who, err)
	}
	return h.reply(c, who, res, nil)
}

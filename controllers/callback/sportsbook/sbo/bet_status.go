package sbo

import (
	"sportsledger/ledger"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetBetStatus(c *fiber.Ctx) error {
	var req GetBetStatusRequest
	if !h.parse(c, &req) {
		return nil
	}

	who := caller(req.CompanyKey, req.Username)
	res, err := h.ledger.Status(c.UserContext(), who, req.TransferCode)
	if err != nil {
		return c.JSON(fiber.Map{
			"ErrorCode":     ledger.Code(err),
			"ErrorMessage":  ledger.Message(err),
			"TransferCode":  req.TransferCode,
			"TransactionId": req.TransactionId,
		})
	}

	conv, err := h.ledger.Converter(res.Currency)
	if err != nil {
		return h.fail(c, who, err)
	}
	rec := res.Record
	return c.JSON(fiber.Map{
		"ErrorCode":     ledger.CodeSuccess,
		"ErrorMessage":  "No Error",
		"TransferCode":  req.TransferCode,
		"TransactionId": req.TransactionId,
		"Status":        betStatus(rec.Flag),
		"WinLoss":       amount(conv.ToProvider(rec.PayoutAmount)),
		"Stake":         amount(conv.ToProvider(rec.BetAmount)),
	})
}

package sbo

import (
	"strings"

	"sportsledger/services"

	"github.com/gofiber/fiber/v2"
)

// Settle pays out WinLoss, the total return of the wager. Leg detail is
// fetched from sbo to complete the settled record.
func (h *Handler) Settle(c *fiber.Ctx) error {
	var req SettleRequest
	if !h.parse(c, &req) {
		return nil
	}

	who := caller(req.CompanyKey, req.Username)
	res, err := h.ledger.Settle(c.UserContext(), services.SettleRequest{
		Caller:        who,
		TransactionID: strings.TrimSpace(req.TransferCode),
		OperationID:   operationID(req.TransactionId, req.TransferCode),
		Payout:        req.WinLoss,
		CashOut:       req.IsCashOut,
		Enrich:        true,
		ExtraInfo:     req.ExtraInfo,
	})
	if err != nil {
		return h.fail(c, who, err)
	}
	return h.reply(c, who, res, nil)
}

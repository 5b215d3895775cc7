package sbo

import (
	"strings"

	"sportsledger/services"

	"github.com/gofiber/fiber/v2"
)

// Rollback reopens a settled or voided wager.
func (h *Handler) Rollback(c *fiber.Ctx) error {
	var req RollbackRequest
	if !h.parse(c, &req) {
		return nil
	}

	who := caller(req.CompanyKey, req.Username)
	res, err := h.ledger.Rollback(c.UserContext(), services.CancelRequest{
		Caller:        who,
		TransactionID: strings.TrimSpace(req.TransferCode),
		OperationID:   operationID(req.TransactionId, req.TransferCode),
	})
	if err != nil {
		return h.fail(c, who, err)
	}
	return h.reply(c, who, res, nil)
}

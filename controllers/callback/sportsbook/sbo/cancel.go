package sbo

import (
	"strings"

	"sportsledger/services"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Cancel(c *fiber.Ctx) error {
	var req CancelRequest
	if !h.parse(c, &req) {
		return nil
	}

	who := caller(req.CompanyKey, req.Username)
	res, err := h.ledger.Cancel(c.UserContext(), services.CancelRequest{
		Caller:        who,
		TransactionID: strings.TrimSpace(req.TransferCode),
		OperationID:   operationID(req.TransactionId, req.TransferCode),
	})
	if err != nil {
		return h.fail(c, who, err)
	}
	return h.reply(c, who, res, nil)
}

package saba

import (
	"sportsledger/services"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CancelBet(c *fiber.Ctx) error {
	var msg CancelBetMessage
	key, ok := h.decode(c, &msg)
	if !ok {
		return nil
	}

	who := services.Caller{Key: key, PlayerID: msg.UserID}
	var last services.Result
	err := batch(msg.Txns, func(t CancelTxn) error {
		res, err := h.ledger.Cancel(c.UserContext(), services.CancelRequest{
			Caller:        who,
			TransactionID: t.RefID,
			OperationID:   txnOperation(msg.OperationID, t.RefID),
		})
		if err != nil {
			return err
		}
		last = res
		return nil
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, fiber.Map{"balance": last.Balance.InexactFloat64()})
}

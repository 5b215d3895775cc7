package saba

import (
	"sportsledger/services"

	"github.com/gofiber/fiber/v2"
)

// AdjustBalance applies a promotion or correction credit or debit.
func (h *Handler) AdjustBalance(c *fiber.Ctx) error {
	var msg AdjustBalanceMessage
	key, ok := h.decode(c, &msg)
	if !ok {
		return nil
	}

	txn := msg.TxID.String()
	if txn == "" {
		txn = msg.RefID
	}
	if txn == "" {
		txn = msg.OperationID
	}

	res, err := h.ledger.Adjust(c.UserContext(), services.AdjustRequest{
		Caller:        services.Caller{Key: key, PlayerID: msg.UserID},
		TransactionID: txn,
		OperationID:   msg.OperationID,
		Credit:        msg.BalanceInfo.CreditAmount,
		Debit:         msg.BalanceInfo.DebitAmount,
		Time:          parseTime(msg.Time),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, fiber.Map{"balance": res.Balance.InexactFloat64()})
}

package saba

import (
	"encoding/json"

	"sportsledger/services"

	"github.com/gofiber/fiber/v2"
)

// ConfirmBet debits the stakes of placed wagers. The saba ticket id is kept
// with the record for later detail lookups.
func (h *Handler) ConfirmBet(c *fiber.Ctx) error {
	var msg ConfirmBetMessage
	key, ok := h.decode(c, &msg)
	if !ok {
		return nil
	}

	who := services.Caller{Key: key, PlayerID: msg.UserID}
	var last services.Result
	err := batch(msg.Txns, func(t ConfirmTxn) error {
		info := map[string]any{"refId": t.RefID, "licenseeTxId": t.LicenseeTxID}
		if t.TxID != "" {
			info["txId"] = t.TxID
		}
		extra, _ := json.Marshal(info)
		res, err := h.ledger.Confirm(c.UserContext(), services.ConfirmRequest{
			Caller:        who,
			TransactionID: t.RefID,
			OperationID:   txnOperation(msg.OperationID, t.RefID),
			ActualStake:   t.ActualAmount,
			ExtraInfo:     extra,
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

// ConfirmBetParlay carries the same txns as ConfirmBet plus ticket detail
// already recorded at placement.
func (h *Handler) ConfirmBetParlay(c *fiber.Ctx) error {
	return h.ConfirmBet(c)
}

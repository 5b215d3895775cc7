package saba

import (
	"context"

	"sportsledger/services"

	"github.com/gofiber/fiber/v2"
)

// Settle pays out each txn. A void, refund or reject status settles without
// an outcome.
func (h *Handler) Settle(c *fiber.Ctx) error {
	return h.settleBatch(c, h.ledger.Settle)
}

// Resettle corrects the payout of settled txns.
func (h *Handler) Resettle(c *fiber.Ctx) error {
	return h.settleBatch(c, h.ledger.Resettle)
}

// Unsettle takes the payout of settled txns back.
func (h *Handler) Unsettle(c *fiber.Ctx) error {
	var msg SettleMessage
	key, ok := h.decode(c, &msg)
	if !ok {
		return nil
	}

	err := batch(msg.Txns, func(t SettleTxn) error {
		_, err := h.ledger.Unsettle(c.UserContext(), services.CancelRequest{
			Caller:        services.Caller{Key: key, PlayerID: t.UserID},
			TransactionID: t.RefID,
			OperationID:   txnOperation(msg.OperationID, t.RefID),
		})
		return err
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, nil)
}

type settleFunc func(context.Context, services.SettleRequest) (services.Result, error)

func (h *Handler) settleBatch(c *fiber.Ctx, apply settleFunc) error {
	var msg SettleMessage
	key, ok := h.decode(c, &msg)
	if !ok {
		return nil
	}

	err := batch(msg.Txns, func(t SettleTxn) error {
		_, err := apply(c.UserContext(), services.SettleRequest{
			Caller:        services.Caller{Key: key, PlayerID: t.UserID},
			TransactionID: t.RefID,
			OperationID:   txnOperation(msg.OperationID, t.RefID),
			Payout:        t.Payout,
			Void:          isVoid(t.Status),
			Enrich:        true,
		})
		return err
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, nil)
}

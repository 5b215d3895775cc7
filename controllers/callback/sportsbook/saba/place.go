package saba

import (
	"sportsledger/ledger"
	sabaapi "sportsledger/providers/saba"
	"sportsledger/services"

	"github.com/gofiber/fiber/v2"
)

// PlaceBet reserves a single wager. The stake is debited on ConfirmBet.
func (h *Handler) PlaceBet(c *fiber.Ctx) error {
	var msg PlaceBetMessage
	key, ok := h.decode(c, &msg)
	if !ok {
		return nil
	}

	res, err := h.ledger.Place(c.UserContext(), services.PlaceRequest{
		Caller:        services.Caller{Key: key, PlayerID: msg.UserID},
		TransactionID: msg.RefID,
		OperationID:   msg.OperationID,
		Category:      sabaapi.Category(msg.SportTypeName),
		Legs: []ledger.Leg{leg(TicketDetail{
			MatchID:     msg.MatchID,
			HomeName:    msg.HomeName,
			AwayName:    msg.AwayName,
			LeagueName:  msg.LeagueName,
			BetTypeName: msg.BetTypeName,
			BetChoice:   msg.BetChoice,
			Point:       msg.Point,
			Odds:        msg.Odds,
		})},
		Amount:  msg.BetAmount,
		BetTime: parseTime(msg.BetTime),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, fiber.Map{
		"refId":        msg.RefID,
		"licenseeTxId": res.Record.BetID,
	})
}

// PlaceBetParlay reserves every txn of a parlay ticket as its own wager over
// the ticket's legs.
func (h *Handler) PlaceBetParlay(c *fiber.Ctx) error {
	var msg PlaceBetParlayMessage
	key, ok := h.decode(c, &msg)
	if !ok {
		return nil
	}

	legs := make([]ledger.Leg, 0, len(msg.TicketDetail))
	category := ledger.CategorySportsbook
	for i, d := range msg.TicketDetail {
		legs = append(legs, leg(d))
		if i == 0 {
			category = sabaapi.Category(d.SportTypeName)
		}
	}

	who := services.Caller{Key: key, PlayerID: msg.UserID}
	placed := make([]fiber.Map, 0, len(msg.Txns))
	err := batch(msg.Txns, func(t ParlayTxn) error {
		res, err := h.ledger.Place(c.UserContext(), services.PlaceRequest{
			Caller:        who,
			TransactionID: t.RefID,
			OperationID:   txnOperation(msg.OperationID, t.RefID),
			Category:      category,
			Legs:          legs,
			Amount:        t.BetAmount,
			BetTime:       parseTime(msg.BetTime),
		})
		if err != nil {
			return err
		}
		placed = append(placed, fiber.Map{"refId": t.RefID, "licenseeTxId": res.Record.BetID})
		return nil
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, fiber.Map{"txns": placed})
}

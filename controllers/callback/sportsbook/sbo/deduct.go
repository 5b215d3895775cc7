package sbo

import (
	"strings"

	"sportsledger/ledger"
	"sportsledger/services"

	"github.com/gofiber/fiber/v2"
)

// Deduct places and confirms a wager in one call. Number games re-send it
// with a growing total for the same TransferCode.
func (h *Handler) Deduct(c *fiber.Ctx) error {
	var req DeductRequest
	if !h.parse(c, &req) {
		return nil
	}

	who := caller(req.CompanyKey, req.Username)
	betTime, _ := ledger.ParseProviderTime(req.BetTime)
	res, err := h.ledger.Deduct(c.UserContext(), services.PlaceRequest{
		Caller:        who,
		TransactionID: strings.TrimSpace(req.TransferCode),
		OperationID:   operationID(req.TransactionId, req.TransferCode),
		Category:      category(req.ProductType),
		Legs: []ledger.Leg{{
			Event:     req.GameTypeName,
			Selection: req.OrderDetail,
		}},
		Amount:    req.Amount,
		BetTime:   betTime,
		ExtraInfo: req.ExtraInfo,
	})
	if err != nil {
		return h.fail(c, who, err)
	}

	betAmount := req.Amount
	if req.CommissionStake.IsPositive() {
		betAmount = req.CommissionStake
	}
	return h.reply(c, who, res, fiber.Map{"BetAmount": amount(betAmount)})
}

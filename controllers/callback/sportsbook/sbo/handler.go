// Package sbo serves the sbo seamless wallet callbacks.
package sbo

import (
	"fmt"
	"strings"

	"sportsledger/helpers"
	"sportsledger/ledger"
	"sportsledger/models"
	"sportsledger/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler answers sbo callbacks from the provider ledger.
type Handler struct {
	ledger *services.Ledger
}

func NewHandler(l *services.Ledger) *Handler {
	return &Handler{ledger: l}
}

// parse reads and validates the body into req. A false return means the
// error response has already been written.
func (h *Handler) parse(c *fiber.Ctx, req any) bool {
	if err := c.BodyParser(req); err != nil {
		_ = c.JSON(fiber.Map{
			"ErrorCode":    ledger.CodeFieldMissing,
			"ErrorMessage": "Invalid request format",
			"Balance":      0,
		})
		return false
	}
	if errs := helpers.Validate(req); len(errs) > 0 {
		_ = c.JSON(fiber.Map{
			"ErrorCode":    ledger.CodeFieldMissing,
			"ErrorMessage": fmt.Sprintf("%s is required", errs[0].Field),
			"Balance":      0,
		})
		return false
	}
	return true
}

func (h *Handler) reply(c *fiber.Ctx, caller services.Caller, res services.Result, extra fiber.Map) error {
	resp := fiber.Map{
		"ErrorCode":    ledger.CodeSuccess,
		"ErrorMessage": "No Error",
		"AccountName":  caller.PlayerID,
		"Balance":      amount(res.Balance),
	}
	for k, v := range extra {
		resp[k] = v
	}
	return c.JSON(resp)
}

// fail reports err with the player's current balance when it can be read.
func (h *Handler) fail(c *fiber.Ctx, caller services.Caller, err error) error {
	code := ledger.Code(err)
	resp := fiber.Map{
		"ErrorCode":    code,
		"ErrorMessage": ledger.Message(err),
		"AccountName":  caller.PlayerID,
		"Balance":      0,
	}
	switch code {
	case ledger.CodeMemberNotFound, ledger.CodeInvalidKey, ledger.CodeFieldMissing:
	default:
		if bal, berr := h.ledger.Balance(c.UserContext(), caller); berr == nil {
			resp["Balance"] = amount(bal.Balance)
		}
	}
	return c.JSON(resp)
}

func caller(companyKey, username string) services.Caller {
	return services.Caller{Key: companyKey, PlayerID: strings.TrimSpace(username)}
}

// operationID keys an sbo event: the transaction id when sent, else the
// transfer code.
func operationID(transactionID, transferCode string) string {
	if id := strings.TrimSpace(transactionID); id != "" {
		return id
	}
	return strings.TrimSpace(transferCode)
}

// category maps an sbo product type onto a ledger game category.
func category(productType int) string {
	switch productType {
	case 0, 1, 5:
		return ledger.CategorySportsbook
	case 3, 7:
		return ledger.CategoryNumberGame
	default:
		return fmt.Sprintf("product-%d", productType)
	}
}

// betStatus is the sbo view of a record flag.
func betStatus(flag models.Flag) string {
	switch flag {
	case models.FlagSettled, models.FlagResettled, models.FlagBonus:
		return "settled"
	case models.FlagVoid, models.FlagCancelled:
		return "void"
	default:
		return "running"
	}
}

func amount(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

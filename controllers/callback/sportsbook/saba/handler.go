// Package saba serves the saba seamless wallet callbacks.
package saba

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sportsledger/helpers"
	"sportsledger/ledger"
	"sportsledger/logger"
	"sportsledger/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler answers saba callbacks from the provider ledger.
type Handler struct {
	ledger *services.Ledger
}

func NewHandler(l *services.Ledger) *Handler {
	return &Handler{ledger: l}
}

// decode unwraps the envelope into msg and returns the signing key. A false
// return means the error response has already been written.
func (h *Handler) decode(c *fiber.Ctx, msg any) (string, bool) {
	var env Envelope
	if err := c.BodyParser(&env); err != nil || len(env.Message) == 0 {
		_ = h.fail(c, ledger.ErrFieldMissing)
		return "", false
	}
	if err := json.Unmarshal(env.Message, msg); err != nil {
		logger.Info(c.UserContext()).Err(err).Msg("saba message decode failed")
		_ = h.fail(c, ledger.ErrFieldMissing)
		return "", false
	}
	if errs := helpers.Validate(msg); len(errs) > 0 {
		_ = c.JSON(fiber.Map{
			"status": strconv.Itoa(ledger.CodeFieldMissing),
			"msg":    fmt.Sprintf("%s is required", errs[0].Field),
		})
		return "", false
	}
	return env.Key, true
}

func (h *Handler) ok(c *fiber.Ctx, data fiber.Map) error {
	resp := fiber.Map{"status": strconv.Itoa(ledger.CodeSuccess), "msg": nil}
	for k, v := range data {
		resp[k] = v
	}
	return c.JSON(resp)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	return c.JSON(fiber.Map{
		"status": strconv.Itoa(ledger.Code(err)),
		"msg":    ledger.Message(err),
	})
}

// batch runs fn for every txn and reports the first failure; later txns are
// still attempted. Txns that were already applied count as success when
// anything else in the batch went through, so a retried batch can succeed.
func batch[T any](txns []T, fn func(T) error) error {
	var first, replayed error
	applied := false
	for _, t := range txns {
		err := fn(t)
		switch {
		case err == nil:
			applied = true
		case errors.Is(err, ledger.ErrAlreadyProcessed):
			if replayed == nil {
				replayed = err
			}
		case first == nil:
			first = err
		}
	}
	if first != nil {
		return first
	}
	if applied {
		return nil
	}
	return replayed
}

// txnOperation keys one txn of a batch so txns sharing an operation id get
// distinct bet ids.
func txnOperation(operationID, refID string) string {
	return operationID + "-" + refID
}

func leg(d TicketDetail) ledger.Leg {
	return ledger.Leg{
		Event:     d.LeagueName,
		Match:     matchName(d.HomeName, d.AwayName),
		Market:    d.BetTypeName,
		Selection: d.BetChoice,
		Handicap:  d.Point,
		Odds:      odds(d.Odds),
	}
}

func matchName(home, away string) string {
	if home == "" && away == "" {
		return ""
	}
	return home + " vs " + away
}

func odds(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func isVoid(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "void", "refund", "reject":
		return true
	}
	return false
}

func parseTime(s string) time.Time {
	t, _ := ledger.ParseProviderTime(s)
	return t
}

package report

import (
	"sportsledger/helpers"
	"sportsledger/ledger"
	"sportsledger/logger"
	"sportsledger/middlewares"
	"sportsledger/services"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	report *services.Report
}

func NewHandler(r *services.Report) *Handler {
	return &Handler{report: r}
}

type OutstandingRequest struct {
	Currency string `json:"currency" validate:"omitempty,len=3"`
	Page     int    `json:"page" validate:"gte=0"`
	Size     int    `json:"size" validate:"gte=0,lte=100"`
}

// Outstanding lists the authenticated branch's open wagers.
func (h *Handler) Outstanding(c *fiber.Ctx) error {
	var req OutstandingRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helpers.JSONError(c, "INVALID_JSON")
		}
	}
	if errs := helpers.Validate(req); len(errs) > 0 {
		return helpers.JSONInvalid(c, errs)
	}

	branch, ok := middlewares.CurrentBranch(c)
	if !ok {
		return helpers.JSONError(c, "INVALID_BRANCH_SESSION")
	}

	ctx := c.UserContext()
	page, err := h.report.Outstanding(ctx, branch.BranchCode, req.Currency, req.Page, req.Size)
	if err != nil {
		logger.Error(ctx).Err(err).Str("branch_code", branch.BranchCode).Msg("outstanding report failed")
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, ledger.Message(err), nil)
	}
	return helpers.JSONSuccess(c, "Outstanding wagers", page)
}

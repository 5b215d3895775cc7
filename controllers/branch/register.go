package branch

import (
	"context"
	"strings"

	"sportsledger/helpers"
	"sportsledger/logger"
	"sportsledger/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const codeAttempts = 5

type Store interface {
	BranchCodeExists(ctx context.Context, branchCode string) (bool, error)
	CreateBranch(ctx context.Context, b *models.Branch) error
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

type RegisterBranchRequest struct {
	Username string `json:"username" validate:"required,max=32"`
	Currency string `json:"currency" validate:"required,len=3"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterBranchRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if errs := helpers.Validate(req); len(errs) > 0 {
		return helpers.JSONInvalid(c, errs)
	}

	ctx := c.UserContext()
	code, err := h.freeCode(ctx)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("branch code lookup failed")
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_REGISTER_BRANCH", nil)
	}
	if code == "" {
		return helpers.JSONError(c, "BRANCH_CODE_ALREADY_EXISTS")
	}

	branch := models.Branch{
		Username:   req.Username,
		BranchCode: code,
		SecretKey:  uuid.New().String(),
		Currency:   strings.ToUpper(strings.TrimSpace(req.Currency)),
		IsActive:   true,
	}
	if err := h.store.CreateBranch(ctx, &branch); err != nil {
		logger.Error(ctx).Err(err).Str("username", req.Username).Msg("create branch failed")
		return helpers.JSONError(c, "FAILED_TO_REGISTER_BRANCH")
	}

	logger.Info(ctx).Str("branch_code", branch.BranchCode).Msg("branch registered")
	return helpers.JSONSuccess(c, "Branch registered successfully", fiber.Map{
		"username":    branch.Username,
		"branch_code": branch.BranchCode,
		"secret_key":  branch.SecretKey,
		"currency":    branch.Currency,
	})
}

// freeCode returns an unused branch code, or "" when every attempt collided.
func (h *Handler) freeCode(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := helpers.GenerateBranchCode()
		taken, err := h.store.BranchCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", nil
}

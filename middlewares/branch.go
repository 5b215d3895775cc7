package middlewares

import (
	"context"
	"crypto/subtle"

	"sportsledger/helpers"
	"sportsledger/models"

	"github.com/gofiber/fiber/v2"
)

const BranchLocal = "branch"

type BranchFinder interface {
	FindBranch(ctx context.Context, branchCode string) (*models.Branch, error)
}

// BranchAuth authenticates branch calls by the X-Branch-Code and
// X-Secret-Key headers and stores the branch in locals.
func BranchAuth(branches BranchFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchCode := c.Get("X-Branch-Code")
		secretKey := c.Get("X-Secret-Key")

		if branchCode == "" || secretKey == "" {
			return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "BRANCH_CODE_AND_SECRET_REQUIRED", nil)
		}

		branch, err := branches.FindBranch(c.UserContext(), branchCode)
		if err != nil || !branch.IsActive ||
			subtle.ConstantTimeCompare([]byte(branch.SecretKey), []byte(secretKey)) != 1 {
			return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "INVALID_BRANCH_CREDENTIALS", nil)
		}

		c.Locals(BranchLocal, *branch)
		return c.Next()
	}
}

// CurrentBranch returns the branch BranchAuth authenticated.
func CurrentBranch(c *fiber.Ctx) (models.Branch, bool) {
	b, ok := c.Locals(BranchLocal).(models.Branch)
	return b, ok
}

package middlewares

import (
	"sportsledger/config"
	"sportsledger/ledger"

	"github.com/gofiber/fiber/v2"
)

// SboAuth rejects callbacks whose CompanyKey matches none of the configured
// sbo credentials.
func SboAuth(cfg config.ProviderConfig) fiber.Handler {
	keys := map[string]bool{}
	for _, cred := range cfg.ByCurrency {
		keys[cred.VendorID] = true
	}

	return func(c *fiber.Ctx) error {
		var body struct {
			CompanyKey string `json:"CompanyKey"`
		}

		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"AccountName":  "",
				"Balance":      0,
				"ErrorCode":    ledger.CodeFieldMissing,
				"ErrorMessage": "Invalid request format",
			})
		}

		if body.CompanyKey == "" || !keys[body.CompanyKey] {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ErrorCode":    ledger.CodeInvalidKey,
				"ErrorMessage": "CompanyKey Error",
				"Balance":      0,
			})
		}

		return c.Next()
	}
}

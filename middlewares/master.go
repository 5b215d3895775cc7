package middlewares

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"sportsledger/config"

	"github.com/gofiber/fiber/v2"
)

// MasterSignature is the signature a master caller sends: the hex HMAC-SHA256
// of code+secret keyed by secret.
func MasterSignature(cfg config.MasterConfig) string {
	h := hmac.New(sha256.New, []byte(cfg.Secret))
	h.Write([]byte(cfg.Code + cfg.Secret))
	return hex.EncodeToString(h.Sum(nil))
}

// MasterAuth guards branch management with the master signature.
func MasterAuth(cfg config.MasterConfig) fiber.Handler {
	expected := []byte(MasterSignature(cfg))

	return func(c *fiber.Ctx) error {
		var body struct {
			Signature string `json:"signature"`
		}

		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status": 0,
				"msg":    "INVALID_JSON",
			})
		}

		if cfg.Secret == "" || !hmac.Equal([]byte(body.Signature), expected) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status": 0,
				"msg":    "INVALID_SIGNATURE",
			})
		}

		return c.Next()
	}
}

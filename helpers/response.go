package helpers

import (
	"github.com/gofiber/fiber/v2"
)

func JSONSuccess(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func JSONError(c *fiber.Ctx, message string) error {
	return JSONErrorStatus(c, fiber.StatusBadRequest, message, nil)
}

// JSONErrorStatus answers with status and, when present, the offending
// fields in data.
func JSONErrorStatus(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"data":    data,
	})
}

// JSONInvalid reports validation failures.
func JSONInvalid(c *fiber.Ctx, errs []FieldError) error {
	return JSONErrorStatus(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", errs)
}

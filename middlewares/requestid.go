package middlewares

import (
	"sportsledger/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, echoes it back and puts a
// request-scoped logger in the user context.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)

		ctx := logger.WithRequestID(c.UserContext(), id)
		ctx = logger.WithFields(ctx, map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		})
		c.SetUserContext(ctx)
		return c.Next()
	}
}

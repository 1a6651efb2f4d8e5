package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// HeaderRequestID is the propagation header for request identifiers.
const HeaderRequestID = "X-Request-Id"

// RequestID assigns each request an identifier, honoring one supplied by
// the caller, and echoes it on the response.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(requestIDKey, rid)
		c.Set(HeaderRequestID, rid)
		return c.Next()
	}
}

// RequestIDFromCtx returns the request identifier, if assigned.
func RequestIDFromCtx(c *fiber.Ctx) string {
	if rid, ok := c.Locals(requestIDKey).(string); ok {
		return rid
	}
	return ""
}

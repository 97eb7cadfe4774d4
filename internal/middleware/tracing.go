package middleware

import (
	"pawmart-backend/internal/contextkeys"
	"pawmart-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

const traceIDHeader = "X-Trace-Id"
const traceIDLocal = "trace_id"

// Tracing reuses the caller's X-Trace-Id or mints one, and exposes it in
// Locals, the response header and the request's user context.
func Tracing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := utils.CopyString(c.Get(traceIDHeader))
		if !validation.IsValidTraceID(traceID) {
			traceID = uuid.New().String()
		}
		c.Locals(traceIDLocal, traceID)
		c.Set(traceIDHeader, traceID)
		c.SetUserContext(contextkeys.ContextWithTraceID(c.UserContext(), traceID))
		return c.Next()
	}
}

// GetTraceID returns the trace ID from context.
func GetTraceID(c *fiber.Ctx) string {
	if id, ok := c.Locals(traceIDLocal).(string); ok {
		return id
	}
	return ""
}

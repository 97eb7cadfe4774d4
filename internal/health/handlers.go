package health

import (
	"github.com/gofiber/fiber/v2"
)

// Handlers holds dependencies for health endpoints.
type Handlers struct {
	Checker *Checker
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := h.Checker.Collect(c.UserContext())
	return c.JSON(fiber.Map{
		"service":      "pawmart-discovery",
		"status":       result.Status,
		"runtime":      result.Runtime,
		"sessions":     result.Sessions,
		"dependencies": result.Dependencies,
	})
}

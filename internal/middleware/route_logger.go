package middleware

import (
	"time"

	"pawmart-backend/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RouteLogger logs each request entry and exit with duration and trace ID,
// and records the latency per route pattern.
func RouteLogger(m *metrics.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := GetTraceID(c)
		if traceID == "" {
			traceID = "no-trace-id"
		}
		start := time.Now()
		log.Debug().Str("trace_id", traceID).Str("method", c.Method()).Str("path", c.Path()).Msg("Entering request")
		err := c.Next()
		elapsed := time.Since(start)
		log.Info().Str("trace_id", traceID).Str("method", c.Method()).Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).Int64("ms", elapsed.Milliseconds()).Msg("Exiting request")
		m.ObserveLatency(c.Route().Path, elapsed.Seconds())
		return err
	}
}

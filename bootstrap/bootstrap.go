package bootstrap

import (
	"pawmart-backend/internal/config"
	"pawmart-backend/internal/interfaces/router"
	"pawmart-backend/internal/pkg/logging"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for serverless deployments (the api handler
// imports this package, not internal).
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Env, cfg.LogLevel)
	app, _, _, err := router.CreateApp(cfg)
	return app, err
}

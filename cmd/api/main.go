package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pawmart-backend/internal/config"
	"pawmart-backend/internal/interfaces/router"
	"pawmart-backend/internal/pkg/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	logging.Setup(cfg.Env, cfg.LogLevel)

	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	// Stores are optional: a failed ping is logged and browsing continues
	// without persistence.
	if db != nil {
		if sqlDB, err := db.DB(); err != nil {
			log.Warn().Err(err).Msg("database: get handle")
		} else if err := sqlDB.Ping(); err != nil {
			log.Warn().Err(err).Msg("database connection failed")
		} else {
			log.Info().Msg("database connected")
		}
	}
	if rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis connection failed")
		} else {
			log.Info().Msg("redis connected")
		}
		cancel()
	}
	if cfg.CatalogBaseURL == "" {
		log.Warn().Msg("CATALOG_BASE_URL is not set; every catalog fetch will fail")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server running")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}

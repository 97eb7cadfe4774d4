package router

import (
	"context"
	"time"

	"pawmart-backend/internal/catalog"
	"pawmart-backend/internal/config"
	"pawmart-backend/internal/discovery"
	"pawmart-backend/internal/favorites"
	"pawmart-backend/internal/health"
	"pawmart-backend/internal/infrastructure/database"
	discoveryhandler "pawmart-backend/internal/interfaces/handlers/discovery"
	favhandler "pawmart-backend/internal/interfaces/handlers/favorites"
	"pawmart-backend/internal/metrics"
	"pawmart-backend/internal/middleware"
	"pawmart-backend/internal/viewport"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Deps are the constructed dependencies of the HTTP app. Redis, DB and
// Metrics are optional.
type Deps struct {
	Config  *config.Config
	Source  catalog.Source
	Redis   *redis.Client
	DB      *gorm.DB
	Metrics *metrics.Manager
}

// CreateApp connects Redis and the database from cfg and builds the app.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opt)
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	var m *metrics.Manager
	if cfg.MetricsEnabled {
		m = metrics.NewManager("pawmart")
	}

	source := &catalog.CachedSource{
		Source: catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogPath, cfg.CatalogTimeout),
		Redis:  rdb,
		TTL:    cfg.CatalogCacheTTL,
	}
	app := NewApp(Deps{Config: cfg, Source: source, Redis: rdb, DB: db, Metrics: m})
	return app, db, rdb, nil
}

// favoritesBackend picks the configured store, falling back to whichever one
// is available. Nil means favorites live only as long as the session view.
func favoritesBackend(d Deps) favorites.Backend {
	wantDB := d.Config.FavoritesBackend == "database"
	switch {
	case wantDB && d.DB != nil:
		return &favorites.GormBackend{DB: d.DB}
	case d.Redis != nil:
		return &favorites.RedisBackend{Client: d.Redis}
	case d.DB != nil:
		return &favorites.GormBackend{DB: d.DB}
	}
	log.Warn().Msg("favorites: no backend configured, favorites are not persisted")
	return nil
}

// NewApp mounts middleware and routes on a fresh Fiber app.
func NewApp(d Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.Session(middleware.SessionConfig{
		Redis:             d.Redis,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}))
	app.Use(middleware.RouteLogger(d.Metrics))

	backend := favoritesBackend(d)
	defaults := discovery.Defaults(cfg.PriceCeiling)
	images := viewport.Options{LookaheadPx: cfg.ImageLookaheadPx, MaxInFlight: cfg.ImageMaxInFlight}
	registry := discovery.NewRegistry(func(ctx context.Context, owner string) *discovery.View {
		var store discovery.FavoritesStore
		if backend != nil {
			store = favorites.NewStore(backend, owner, d.Metrics)
		}
		return discovery.NewView(ctx, discovery.ViewConfig{
			Source:    d.Source,
			Favorites: store,
			Defaults:  defaults,
			Images:    images,
			Metrics:   d.Metrics,
		})
	}, cfg.SessionMaxIdle)

	checker := &health.Checker{
		Redis:      d.Redis,
		CatalogURL: cfg.CatalogBaseURL,
		StartedAt:  time.Now(),
		Sessions:   registry.Len,
	}
	if d.DB != nil {
		checker.DB = &gormDBPinger{db: d.DB}
	}
	hh := &health.Handlers{Checker: checker}
	app.Get("/health/json", hh.JSON)
	if d.Metrics != nil {
		app.Get("/metrics", d.Metrics.Handler())
	}

	dh := &discoveryhandler.Handlers{Registry: registry, PlaceholderImageURL: cfg.PlaceholderImageURL}
	disc := app.Group("/api/v1/discover")
	disc.Get("/", dh.Discover)
	disc.Post("/filters", dh.UpdateFilters)
	disc.Delete("/filters", dh.ResetFilters)
	disc.Post("/reload", dh.Reload)
	disc.Get("/facets", dh.Facets)
	disc.Post("/viewport", dh.ReportViewport)
	disc.Post("/images/:key/complete", dh.CompleteImage)

	fh := &favhandler.Handlers{Registry: registry}
	favGroup := app.Group("/api/v1/favorites")
	favGroup.Get("/", fh.List)
	favGroup.Post("/toggle", fh.Toggle)

	return app
}

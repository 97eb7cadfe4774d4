package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env      string
	Port     string
	LogLevel string

	RedisURL         string
	DatabaseURL      string // postgres:// DSN or a sqlite file path
	FavoritesBackend string // "redis" or "database"

	CatalogBaseURL  string
	CatalogPath     string
	CatalogTimeout  time.Duration
	CatalogCacheTTL time.Duration

	PriceCeiling        int
	ImageLookaheadPx    float64
	ImageMaxInFlight    int
	PlaceholderImageURL string
	SessionMaxIdle      time.Duration

	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	MetricsEnabled      bool
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("FAVORITES_BACKEND", "redis")
	v.SetDefault("CATALOG_PATH", "/api/listings")
	v.SetDefault("CATALOG_TIMEOUT", "10s")
	v.SetDefault("CATALOG_CACHE_TTL", "30s")
	v.SetDefault("PRICE_CEILING", 50000)
	v.SetDefault("IMAGE_LOOKAHEAD_PX", 200)
	v.SetDefault("IMAGE_MAX_IN_FLIGHT", 6)
	v.SetDefault("PLACEHOLDER_IMAGE_URL", "/static/placeholder-pet.png")
	v.SetDefault("SESSION_MAX_IDLE", "30m")
	v.SetDefault("METRICS_ENABLED", true)

	return &Config{
		Env:                 v.GetString("APP_ENV"),
		Port:                v.GetString("PORT"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		RedisURL:            v.GetString("REDIS_URL"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		FavoritesBackend:    strings.ToLower(v.GetString("FAVORITES_BACKEND")),
		CatalogBaseURL:      strings.TrimSpace(v.GetString("CATALOG_BASE_URL")),
		CatalogPath:         v.GetString("CATALOG_PATH"),
		CatalogTimeout:      v.GetDuration("CATALOG_TIMEOUT"),
		CatalogCacheTTL:     v.GetDuration("CATALOG_CACHE_TTL"),
		PriceCeiling:        v.GetInt("PRICE_CEILING"),
		ImageLookaheadPx:    v.GetFloat64("IMAGE_LOOKAHEAD_PX"),
		ImageMaxInFlight:    v.GetInt("IMAGE_MAX_IN_FLIGHT"),
		PlaceholderImageURL: v.GetString("PLACEHOLDER_IMAGE_URL"),
		SessionMaxIdle:      v.GetDuration("SESSION_MAX_IDLE"),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(v.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		MetricsEnabled:      v.GetBool("METRICS_ENABLED"),
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

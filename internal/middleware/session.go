package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SessionConfig for the anonymous browsing session. Redis is optional; without
// it session data lives only for the request.
type SessionConfig struct {
	Redis             *redis.Client
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	SessionCookieName  = "pawmart.sid"
	SessionHeader      = "X-Session-Id"
	SessionRedisPrefix = "session:"
	sessionMaxAge      = 30 * 24 * time.Hour

	sessionIDLocal    = "session_id"
	sessionDataLocal  = "session_data"
	sessionDirtyLocal = "session_dirty"
)

// Session identifies the browsing session from the cookie or the
// X-Session-Id header, minting a new id when neither carries a valid one.
// Data changed through SetSessionValue is written back to Redis after the
// handler; the write is best effort.
func Session(cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookieName)
		if sessionID == "" {
			sessionID = c.Get(SessionHeader)
		}
		// The id outlives the request as a registry and favorites key, so it
		// must not alias the request buffer.
		sessionID = utils.CopyString(sessionID)
		if _, err := uuid.Parse(sessionID); err != nil {
			sessionID = uuid.New().String()
			c.Cookie(sessionCookie(cfg, sessionID))
		}
		c.Set(SessionHeader, sessionID)

		data := map[string]interface{}{}
		if cfg.Redis != nil {
			if b, err := cfg.Redis.Get(context.Background(), SessionRedisPrefix+sessionID).Bytes(); err == nil {
				_ = json.Unmarshal(b, &data)
			}
		}
		c.Locals(sessionIDLocal, sessionID)
		c.Locals(sessionDataLocal, data)

		if err := c.Next(); err != nil {
			return err
		}

		if dirty, _ := c.Locals(sessionDirtyLocal).(bool); dirty && cfg.Redis != nil {
			b, _ := json.Marshal(data)
			if err := cfg.Redis.Set(context.Background(), SessionRedisPrefix+sessionID, b, sessionMaxAge).Err(); err != nil {
				log.Debug().Err(err).Str("trace_id", GetTraceID(c)).Msg("session: save failed")
			}
		}
		return nil
	}
}

// GetSessionID returns the current session ID from context.
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sessionIDLocal).(string)
	return sid
}

// SetSessionValue stores value in the session and marks it for saving.
func SetSessionValue(c *fiber.Ctx, key string, value interface{}) {
	data, _ := c.Locals(sessionDataLocal).(map[string]interface{})
	if data == nil {
		data = map[string]interface{}{}
		c.Locals(sessionDataLocal, data)
	}
	data[key] = value
	c.Locals(sessionDirtyLocal, true)
}

// GetSessionValue returns nil when key is not set.
func GetSessionValue(c *fiber.Ctx, key string) interface{} {
	data, _ := c.Locals(sessionDataLocal).(map[string]interface{})
	return data[key]
}

func sessionCookie(cfg SessionConfig, value string) *fiber.Cookie {
	sameSite := "Lax"
	if cfg.AllowCrossSiteDev {
		sameSite = "None"
	}
	return &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.IsProduction || cfg.AllowCrossSiteDev,
		SameSite: sameSite,
	}
}

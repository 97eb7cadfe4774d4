package favorites

import (
	"encoding/json"

	discsvc "pawmart-backend/internal/discovery"
	"pawmart-backend/internal/middleware"
	"pawmart-backend/internal/models"
	"pawmart-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Registry *discsvc.Registry
}

func (h *Handlers) view(c *fiber.Ctx) *discsvc.View {
	owner := middleware.GetSessionID(c)
	if owner == "" {
		owner = "anonymous"
	}
	return h.Registry.Get(c.UserContext(), owner)
}

// GET /api/v1/favorites
func (h *Handlers) List(c *fiber.Ctx) error {
	favs := h.view(c).Snapshot().Favorites
	return response.Success(c, "Favorites fetched successfully", fiber.Map{
		"favorites": favs,
		"count":     len(favs),
	}, nil)
}

type toggleRequest struct {
	Key      string `json:"key"`
	ID       *int64 `json:"id"`
	Category string `json:"listing_type"`
}

func (r toggleRequest) listingKey() (models.ListingKey, error) {
	if r.Key != "" {
		return models.ParseListingKey(r.Key)
	}
	if r.ID == nil {
		return models.ListingKey{}, models.ErrInvalidKey
	}
	k := models.ListingKey{ID: *r.ID, Category: models.ListingCategory(r.Category)}
	if !k.Category.Valid() {
		return models.ListingKey{}, models.ErrInvalidKey
	}
	return k, nil
}

// POST /api/v1/favorites/toggle with { key } or { id, listing_type }.
// Persistence failures are logged by the store; the toggle still applies to
// the session.
func (h *Handlers) Toggle(c *fiber.Ctx) error {
	var req toggleRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	k, err := req.listingKey()
	if err != nil {
		return response.BadRequest(c, "Missing or invalid listing key")
	}
	favs := h.view(c).ToggleFavorite(c.UserContext(), k)
	log.Debug().Str("trace_id", middleware.GetTraceID(c)).Str("key", k.String()).Bool("favorite", favs.Has(k)).Msg("favorites: toggled")
	return response.Success(c, "Favorite toggled successfully", fiber.Map{
		"key":         k.String(),
		"is_favorite": favs.Has(k),
		"favorites":   favs,
		"count":       len(favs),
	}, nil)
}

package discovery

import (
	"encoding/json"
	"errors"
	"net/url"

	discsvc "pawmart-backend/internal/discovery"
	"pawmart-backend/internal/middleware"
	"pawmart-backend/internal/models"
	"pawmart-backend/internal/pkg/response"
	"pawmart-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// anonymousOwner is used when no session middleware ran.
const anonymousOwner = "anonymous"

type Handlers struct {
	Registry            *discsvc.Registry
	PlaceholderImageURL string
}

func (h *Handlers) view(c *fiber.Ctx) *discsvc.View {
	owner := middleware.GetSessionID(c)
	if owner == "" {
		owner = anonymousOwner
	}
	return h.Registry.Get(c.UserContext(), owner)
}

type listingView struct {
	models.Listing
	Key        string `json:"key"`
	IsFavorite bool   `json:"is_favorite"`
	LoadImage  bool   `json:"load_image"`
}

type catalogError struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (h *Handlers) payload(v *discsvc.View, snap discsvc.Snapshot) fiber.Map {
	listings := make([]listingView, len(snap.Listings))
	for i, l := range snap.Listings {
		k := l.Key()
		listings[i] = listingView{
			Listing:    l,
			Key:        k.String(),
			IsFavorite: snap.Favorites.Has(k),
			LoadImage:  v.ShouldLoadImage(k),
		}
	}
	data := fiber.Map{
		"listings":  listings,
		"total":     len(listings),
		"filters":   snap.State,
		"params":    snap.Query,
		"query":     snap.Query.QueryString(),
		"facets":    snap.Facets,
		"favorites": snap.Favorites,
	}
	if snap.CatalogErr != nil {
		data["catalog_error"] = catalogError{
			Type:      discsvc.ErrorKind(snap.CatalogErr),
			Message:   snap.CatalogErr.Error(),
			Retryable: true,
		}
	} else {
		data["catalog_error"] = nil
	}
	return data
}

// activate fetches the catalog on first use. Catalog failures are part of the
// payload, so only a closed view or a cancelled request is an error here.
func activate(c *fiber.Ctx, v *discsvc.View, reload bool) error {
	var err error
	if reload {
		err = v.Reload(c.UserContext())
	} else {
		err = v.Activate(c.UserContext())
	}
	if errors.Is(err, discsvc.ErrViewClosed) {
		return err
	}
	return c.UserContext().Err()
}

func (h *Handlers) render(c *fiber.Ctx, v *discsvc.View, message string) error {
	snap := v.Snapshot()
	middleware.SetSessionValue(c, "last_query", snap.Query.QueryString())
	return response.Success(c, message, h.payload(v, snap), nil)
}

// GET /api/v1/discover. The query string is the whole filter state; a missing
// parameter means its default.
func (h *Handlers) Discover(c *fiber.Ctx) error {
	values, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return response.BadRequest(c, "Invalid query string")
	}
	if !validation.IsValidSearch(values.Get(discsvc.ParamSearch)) {
		return response.BadRequest(c, "search is too long")
	}
	v := h.view(c)
	v.Apply(discsvc.Decode(discsvc.ParamsFromValues(values), v.Defaults()))
	if err := activate(c, v, false); err != nil {
		return response.Error(c, "Discovery view unavailable", fiber.StatusServiceUnavailable, nil)
	}
	return h.render(c, v, "Listings fetched successfully")
}

type filtersRequest struct {
	Search        *string `json:"search"`
	Category      *string `json:"category"`
	PetType       *string `json:"petType"`
	Breed         *string `json:"breed"`
	Condition     *string `json:"condition"`
	SortBy        *string `json:"sortBy"`
	MinPrice      *int    `json:"minPrice"`
	MaxPrice      *int    `json:"maxPrice"`
	Location      *string `json:"location"`
	ShowFavorites *bool   `json:"showFavorites"`
}

func (r filtersRequest) validate() string {
	switch {
	case r.Search != nil && !validation.IsValidSearch(*r.Search):
		return "search is too long"
	case r.Category != nil && !discsvc.IsCategory(*r.Category):
		return "Invalid category"
	case r.PetType != nil && !discsvc.IsPetType(*r.PetType):
		return "Invalid petType"
	case r.Condition != nil && *r.Condition != discsvc.All && !models.IsSupplyCondition(*r.Condition):
		return "Invalid condition"
	case r.SortBy != nil && !discsvc.IsSortKey(*r.SortBy):
		return "Invalid sortBy"
	case r.MinPrice != nil && *r.MinPrice < 0:
		return "minPrice must not be negative"
	case r.MaxPrice != nil && *r.MaxPrice < 0:
		return "maxPrice must not be negative"
	}
	return ""
}

// apply runs the transitions in a fixed order: pet type before breed, so a
// breed sent together with a new pet type survives the reset, and max before
// min.
func (r filtersRequest) apply(s discsvc.FilterState) discsvc.FilterState {
	if r.Search != nil {
		s = s.WithSearchText(*r.Search)
	}
	if r.Category != nil {
		s = s.WithCategory(*r.Category)
	}
	if r.PetType != nil {
		s = s.WithPetType(*r.PetType)
	}
	if r.Breed != nil {
		s = s.WithBreed(*r.Breed)
	}
	if r.Condition != nil {
		s = s.WithSupplyCondition(*r.Condition)
	}
	if r.SortBy != nil {
		s = s.WithSortBy(*r.SortBy)
	}
	if r.MaxPrice != nil {
		s = s.WithPriceMax(*r.MaxPrice)
	}
	if r.MinPrice != nil {
		s = s.WithPriceMin(*r.MinPrice)
	}
	if r.Location != nil {
		s = s.WithLocation(*r.Location)
	}
	if r.ShowFavorites != nil {
		s = s.WithFavoritesOnly(*r.ShowFavorites)
	}
	return s
}

// POST /api/v1/discover/filters applies a partial update to the current state.
func (h *Handlers) UpdateFilters(c *fiber.Ctx) error {
	var req filtersRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return response.BadRequest(c, msg)
	}
	v := h.view(c)
	v.Update(req.apply)
	if err := activate(c, v, false); err != nil {
		return response.Error(c, "Discovery view unavailable", fiber.StatusServiceUnavailable, nil)
	}
	return h.render(c, v, "Filters updated successfully")
}

// DELETE /api/v1/discover/filters restores the defaults.
func (h *Handlers) ResetFilters(c *fiber.Ctx) error {
	v := h.view(c)
	v.Reset()
	if err := activate(c, v, false); err != nil {
		return response.Error(c, "Discovery view unavailable", fiber.StatusServiceUnavailable, nil)
	}
	return h.render(c, v, "Filters reset successfully")
}

// POST /api/v1/discover/reload refetches the catalog.
func (h *Handlers) Reload(c *fiber.Ctx) error {
	v := h.view(c)
	if err := activate(c, v, true); err != nil {
		return response.Error(c, "Discovery view unavailable", fiber.StatusServiceUnavailable, nil)
	}
	log.Info().Str("trace_id", middleware.GetTraceID(c)).Msg("discover: catalog reloaded")
	return h.render(c, v, "Catalog reloaded successfully")
}

// GET /api/v1/discover/facets?petType=dog
func (h *Handlers) Facets(c *fiber.Ctx) error {
	v := h.view(c)
	if err := activate(c, v, false); err != nil {
		return response.Error(c, "Discovery view unavailable", fiber.StatusServiceUnavailable, nil)
	}
	petType := c.Query("petType")
	if petType == "" {
		petType = v.Snapshot().State.PetType
	}
	if !discsvc.IsPetType(petType) {
		return response.BadRequest(c, "Invalid petType")
	}
	return response.Success(c, "Facets fetched successfully", v.Facets(petType), nil)
}

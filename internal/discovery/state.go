package discovery

import (
	"strings"

	"pawmart-backend/internal/models"
)

const All = "all"

// Sort keys.
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
)

// DefaultPriceCeiling is the upper price bound of a fresh view.
const DefaultPriceCeiling = 50000

// FilterState is the whole input of the filter pipeline besides the catalog
// and the favorites. It is a value: every transition returns a new state.
type FilterState struct {
	SearchText      string `json:"search"`
	Category        string `json:"category"`
	PetType         string `json:"petType"`
	Breed           string `json:"breed"`
	SupplyCondition string `json:"condition"`
	SortBy          string `json:"sortBy"`
	PriceMin        int    `json:"minPrice"`
	PriceMax        int    `json:"maxPrice"`
	Location        string `json:"location"`
	FavoritesOnly   bool   `json:"showFavorites"`
}

// Defaults returns the state of a fresh view. A non-positive ceiling falls
// back to DefaultPriceCeiling.
func Defaults(priceCeiling int) FilterState {
	if priceCeiling <= 0 {
		priceCeiling = DefaultPriceCeiling
	}
	return FilterState{
		Category:        All,
		PetType:         All,
		Breed:           All,
		SupplyCondition: All,
		SortBy:          SortNewest,
		PriceMin:        0,
		PriceMax:        priceCeiling,
		Location:        All,
	}
}

// IsCategory reports whether s is a valid category filter value.
func IsCategory(s string) bool {
	return s == All || models.ListingCategory(s).Valid()
}

// IsPetType reports whether s is a valid pet type filter value.
func IsPetType(s string) bool {
	return s == All || s == models.PetTypeDog || s == models.PetTypeCat
}

// IsSortKey reports whether s is a known sort key.
func IsSortKey(s string) bool {
	switch s {
	case SortNewest, SortOldest, SortPriceLow, SortPriceHigh:
		return true
	}
	return false
}

// WithSearchText keeps the text as typed, except that whitespace-only text is
// the empty search.
func (s FilterState) WithSearchText(text string) FilterState {
	if strings.TrimSpace(text) == "" {
		text = ""
	}
	s.SearchText = text
	return s
}

// WithCategory narrows or widens the category. Pet and supply sub-filters are
// kept as they are, so they apply again when the category narrows back.
func (s FilterState) WithCategory(category string) FilterState {
	if !IsCategory(category) {
		return s
	}
	s.Category = category
	return s
}

// WithPetType sets the pet type and resets the breed, whose vocabulary
// depends on the pet type.
func (s FilterState) WithPetType(petType string) FilterState {
	if !IsPetType(petType) {
		return s
	}
	s.PetType = petType
	s.Breed = All
	return s
}

// WithBreed is ignored while no pet type is selected.
func (s FilterState) WithBreed(breed string) FilterState {
	breed = strings.TrimSpace(breed)
	if breed == "" {
		breed = All
	}
	if s.PetType == All && breed != All {
		return s
	}
	s.Breed = breed
	return s
}

func (s FilterState) WithSupplyCondition(condition string) FilterState {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		condition = All
	}
	if condition != All && !models.IsSupplyCondition(condition) {
		return s
	}
	s.SupplyCondition = condition
	return s
}

func (s FilterState) WithSortBy(sortBy string) FilterState {
	if !IsSortKey(sortBy) {
		return s
	}
	s.SortBy = sortBy
	return s
}

// WithPriceMin sets the lower bound, clamped into [0, PriceMax].
func (s FilterState) WithPriceMin(v int) FilterState {
	if v < 0 {
		v = 0
	}
	if v > s.PriceMax {
		v = s.PriceMax
	}
	s.PriceMin = v
	return s
}

// WithPriceMax sets the upper bound, clamped to at least PriceMin. There is
// no upper cap.
func (s FilterState) WithPriceMax(v int) FilterState {
	if v < s.PriceMin {
		v = s.PriceMin
	}
	s.PriceMax = v
	return s
}

func (s FilterState) WithLocation(location string) FilterState {
	location = strings.TrimSpace(location)
	if location == "" {
		location = All
	}
	s.Location = location
	return s
}

func (s FilterState) WithFavoritesOnly(on bool) FilterState {
	s.FavoritesOnly = on
	return s
}

// Normalize replays s through the transitions on top of defaults, so the
// result is a state the UI could have produced.
func (s FilterState) Normalize(defaults FilterState) FilterState {
	out := defaults.
		WithSearchText(s.SearchText).
		WithCategory(s.Category).
		WithPetType(s.PetType).
		WithBreed(s.Breed).
		WithSupplyCondition(s.SupplyCondition).
		WithSortBy(s.SortBy).
		WithLocation(s.Location).
		WithFavoritesOnly(s.FavoritesOnly)
	// Max first so a min above the default ceiling is not clamped by it.
	out = out.WithPriceMax(s.PriceMax).WithPriceMin(s.PriceMin)
	return out
}

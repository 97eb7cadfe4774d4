package discovery

import (
	"math"
	"sort"
	"strings"

	"pawmart-backend/internal/models"
)

// Filter returns the visible listings for state, in display order. It is a
// pure function of its inputs and never mutates catalog.
//
// Stages run in a fixed order: favorites, text, category, pet attributes,
// supply condition, price, location, then a stable sort.
func Filter(catalog []models.Listing, state FilterState, favorites models.FavoriteSet) []models.Listing {
	out := make([]models.Listing, 0, len(catalog))
	needle := strings.ToLower(strings.TrimSpace(state.SearchText))
	for _, l := range catalog {
		if state.FavoritesOnly && !favorites.Has(l.Key()) {
			continue
		}
		if needle != "" && !matchesText(l, needle) {
			continue
		}
		if state.Category != All && string(l.Category) != state.Category {
			continue
		}
		if l.Category == models.CategoryPet && !matchesPet(l, state) {
			continue
		}
		if l.Category == models.CategorySupply && state.SupplyCondition != All && l.Condition != state.SupplyCondition {
			continue
		}
		if !inPriceRange(l, state) {
			continue
		}
		if state.Location != All && l.Location != state.Location {
			continue
		}
		out = append(out, l)
	}
	sortListings(out, state.SortBy)
	return out
}

func matchesText(l models.Listing, needle string) bool {
	for _, field := range []string{l.Name, l.Description, l.Breed, l.PetType, string(l.Category)} {
		if field != "" && strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// matchesPet ignores the breed while no pet type is selected.
func matchesPet(l models.Listing, state FilterState) bool {
	if state.PetType == All {
		return true
	}
	if l.PetType != state.PetType {
		return false
	}
	return state.Breed == All || l.Breed == state.Breed
}

func inPriceRange(l models.Listing, state FilterState) bool {
	if l.Price == nil {
		return false
	}
	p := *l.Price
	return p >= float64(state.PriceMin) && p <= float64(state.PriceMax)
}

func sortListings(ls []models.Listing, sortBy string) {
	switch sortBy {
	case SortOldest:
		sort.SliceStable(ls, func(i, j int) bool { return ls[i].CreatedAt.Before(ls[j].CreatedAt) })
	case SortPriceLow:
		sort.SliceStable(ls, func(i, j int) bool { return priceOf(ls[i], math.Inf(1)) < priceOf(ls[j], math.Inf(1)) })
	case SortPriceHigh:
		sort.SliceStable(ls, func(i, j int) bool { return priceOf(ls[i], math.Inf(-1)) > priceOf(ls[j], math.Inf(-1)) })
	default:
		sort.SliceStable(ls, func(i, j int) bool { return ls[i].CreatedAt.After(ls[j].CreatedAt) })
	}
}

// priceOf puts listings without a price last in either direction.
func priceOf(l models.Listing, missing float64) float64 {
	if l.Price == nil {
		return missing
	}
	return *l.Price
}

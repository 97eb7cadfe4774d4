package discovery

import (
	"pawmart-backend/internal/models"
)

// PriceRange is the span of known prices in a catalog.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Facets are the selectable vocabularies offered next to the results. They are
// derived from the full catalog, never from the filtered subset, so options
// do not disappear while other filters narrow the results.
type Facets struct {
	Locations        []string    `json:"locations"`
	Breeds           []string    `json:"breeds"`
	SupplyConditions []string    `json:"supplyConditions"`
	PriceBounds      *PriceRange `json:"priceBounds"`
}

// AvailableLocations returns All followed by every distinct non-empty
// location, in first-seen order.
func AvailableLocations(catalog []models.Listing) []string {
	out := []string{All}
	seen := map[string]bool{}
	for _, l := range catalog {
		if l.Location == "" || seen[l.Location] {
			continue
		}
		seen[l.Location] = true
		out = append(out, l.Location)
	}
	return out
}

// AvailableBreeds returns All, followed by the breeds of pets of petType when
// a pet type is selected.
func AvailableBreeds(catalog []models.Listing, petType string) []string {
	out := []string{All}
	if petType == All || petType == "" {
		return out
	}
	seen := map[string]bool{}
	for _, l := range catalog {
		if l.Category != models.CategoryPet || l.PetType != petType || l.Breed == "" || seen[l.Breed] {
			continue
		}
		seen[l.Breed] = true
		out = append(out, l.Breed)
	}
	return out
}

// PriceBounds returns nil when no listing carries a price.
func PriceBounds(catalog []models.Listing) *PriceRange {
	var r *PriceRange
	for _, l := range catalog {
		if l.Price == nil {
			continue
		}
		p := *l.Price
		if r == nil {
			r = &PriceRange{Min: p, Max: p}
			continue
		}
		if p < r.Min {
			r.Min = p
		}
		if p > r.Max {
			r.Max = p
		}
	}
	return r
}

// BuildFacets computes every facet for the given pet type selection.
func BuildFacets(catalog []models.Listing, petType string) Facets {
	conditions := append([]string{All}, models.SupplyConditions...)
	return Facets{
		Locations:        AvailableLocations(catalog),
		Breeds:           AvailableBreeds(catalog, petType),
		SupplyConditions: conditions,
		PriceBounds:      PriceBounds(catalog),
	}
}

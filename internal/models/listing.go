package models

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ListingCategory is the marketplace section a listing belongs to.
type ListingCategory string

const (
	CategoryPet    ListingCategory = "pet"
	CategorySupply ListingCategory = "supply"
)

// Valid reports whether c is one of the known categories.
func (c ListingCategory) Valid() bool {
	return c == CategoryPet || c == CategorySupply
}

const (
	PetTypeDog = "dog"
	PetTypeCat = "cat"
)

// SupplyConditions is the fixed vocabulary for supply listings.
var SupplyConditions = []string{"new", "like-new", "good", "fair", "used"}

// IsSupplyCondition reports whether s is in SupplyConditions.
func IsSupplyCondition(s string) bool {
	for _, c := range SupplyConditions {
		if c == s {
			return true
		}
	}
	return false
}

var ErrInvalidKey = errors.New("invalid listing key")

// ListingKey identifies a listing. Raw ids collide between pets and supplies,
// so the category is always part of the identity.
type ListingKey struct {
	ID       int64           `json:"id"`
	Category ListingCategory `json:"listing_type"`
}

// String returns "<category>:<id>". Categories never contain ':' and ids are
// numeric, so the form cannot collide.
func (k ListingKey) String() string {
	return string(k.Category) + ":" + strconv.FormatInt(k.ID, 10)
}

// ParseListingKey is the inverse of ListingKey.String.
func ParseListingKey(s string) (ListingKey, error) {
	cat, id, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ListingKey{}, ErrInvalidKey
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ListingKey{}, ErrInvalidKey
	}
	k := ListingKey{ID: n, Category: ListingCategory(cat)}
	if !k.Category.Valid() {
		return ListingKey{}, ErrInvalidKey
	}
	return k, nil
}

// Listing is the normalized catalog record. It is never mutated after the
// catalog fetch that produced it.
type Listing struct {
	ID          int64           `json:"id"`
	Category    ListingCategory `json:"listing_type"`
	Name        string          `json:"name"`
	Price       *float64        `json:"price"`
	Location    string          `json:"location"`
	CreatedAt   time.Time       `json:"created_at"`
	PetType     string          `json:"pet_type,omitempty"`
	Breed       string          `json:"breed,omitempty"`
	AgeYears    *float64        `json:"age_years,omitempty"`
	Condition   string          `json:"condition,omitempty"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
}

// Key returns the composite identity of l.
func (l Listing) Key() ListingKey {
	return ListingKey{ID: l.ID, Category: l.Category}
}

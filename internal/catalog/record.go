package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"pawmart-backend/internal/models"
)

// payload is the catalog endpoint body. Some deployments name the array
// "listings" instead of "data".
type payload struct {
	Success  *bool       `json:"success"`
	Message  string      `json:"message"`
	Data     []rawRecord `json:"data"`
	Listings []rawRecord `json:"listings"`
}

type rawRecord struct {
	ID          flexNumber `json:"id"`
	ListingType string     `json:"listing_type"`
	Name        string     `json:"name"`
	Price       flexNumber `json:"price"`
	Location    string     `json:"location"`
	CreatedAt   string     `json:"created_at"`
	Breed       string     `json:"breed"`
	Type        string     `json:"type"`
	Age         flexNumber `json:"age"`
	Condition   string     `json:"condition"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url"`
}

// flexNumber accepts a JSON number, a numeric string, or null. Anything else,
// including non-finite values such as "Infinity" or "NaN", decodes as "not
// set" instead of failing the whole payload.
type flexNumber struct {
	value *float64
}

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	f.value = &v
	return nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// normalize converts r into a Listing. It reports false when the record
// cannot be identified: no integral id or an unknown listing_type.
func (r rawRecord) normalize() (models.Listing, bool) {
	if r.ID.value == nil {
		return models.Listing{}, false
	}
	id := *r.ID.value
	if id != float64(int64(id)) {
		return models.Listing{}, false
	}
	cat := models.ListingCategory(strings.ToLower(strings.TrimSpace(r.ListingType)))
	if !cat.Valid() {
		return models.Listing{}, false
	}

	l := models.Listing{
		ID:          int64(id),
		Category:    cat,
		Name:        strings.TrimSpace(r.Name),
		Location:    strings.TrimSpace(r.Location),
		CreatedAt:   parseTime(r.CreatedAt),
		Description: r.Description,
		ImageURL:    strings.TrimSpace(r.ImageURL),
	}
	if p := r.Price.value; p != nil && *p >= 0 {
		v := *p
		l.Price = &v
	}
	switch cat {
	case models.CategoryPet:
		l.PetType = strings.ToLower(strings.TrimSpace(r.Type))
		l.Breed = strings.TrimSpace(r.Breed)
		l.AgeYears = r.Age.value
	case models.CategorySupply:
		l.Condition = strings.ToLower(strings.TrimSpace(r.Condition))
	}
	return l, true
}

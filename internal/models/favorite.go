package models

import (
	"encoding/json"
	"sort"
	"time"

	"gorm.io/datatypes"
)

// FavoriteSet is a set of listing keys. Treat it as immutable: Toggle and
// Clone return fresh sets.
type FavoriteSet map[ListingKey]struct{}

// NewFavoriteSet builds a set from keys.
func NewFavoriteSet(keys ...ListingKey) FavoriteSet {
	s := make(FavoriteSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports membership. A nil set has no members.
func (s FavoriteSet) Has(k ListingKey) bool {
	_, ok := s[k]
	return ok
}

func (s FavoriteSet) Clone() FavoriteSet {
	out := make(FavoriteSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Toggle returns a copy of s with k's membership flipped.
func (s FavoriteSet) Toggle(k ListingKey) FavoriteSet {
	out := s.Clone()
	if out.Has(k) {
		delete(out, k)
	} else {
		out[k] = struct{}{}
	}
	return out
}

// Strings returns the sorted string form of every key.
func (s FavoriteSet) Strings() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k.String())
	}
	sort.Strings(out)
	return out
}

func (s FavoriteSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON accepts an array of key strings. Entries that do not parse are
// skipped.
func (s *FavoriteSet) UnmarshalJSON(b []byte) error {
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(FavoriteSet, len(raw))
	for _, r := range raw {
		k, err := ParseListingKey(r)
		if err != nil {
			continue
		}
		out[k] = struct{}{}
	}
	*s = out
	return nil
}

// FavoriteRecord is the durable row behind a favorites owner when the
// database backend is used.
type FavoriteRecord struct {
	Owner     string         `gorm:"column:owner;primaryKey;size:128" json:"owner"`
	Keys      datatypes.JSON `gorm:"column:keys;not null" json:"keys"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (FavoriteRecord) TableName() string {
	return "favorite_sets"
}

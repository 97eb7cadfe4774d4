package discovery

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Shareable query keys.
const (
	ParamSearch        = "search"
	ParamCategory      = "category"
	ParamPetType       = "petType"
	ParamBreed         = "breed"
	ParamCondition     = "condition"
	ParamSortBy        = "sortBy"
	ParamMinPrice      = "minPrice"
	ParamMaxPrice      = "maxPrice"
	ParamLocation      = "location"
	ParamShowFavorites = "showFavorites"
)

// ParamMap is the flat, bookmarkable form of a FilterState. A missing key
// means the default value.
type ParamMap map[string]string

// ParamsFromValues keeps the first value of every key.
func ParamsFromValues(v url.Values) ParamMap {
	out := make(ParamMap, len(v))
	for k, vals := range v {
		if len(vals) > 0 {
			out[k] = vals[0]
		}
	}
	return out
}

// QueryString renders p with sorted keys, so equal maps render equally.
func (p ParamMap) QueryString() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p[k]))
	}
	return b.String()
}

// Encode emits only the fields of s that differ from defaults.
func Encode(s, defaults FilterState) ParamMap {
	p := ParamMap{}
	if strings.TrimSpace(s.SearchText) != strings.TrimSpace(defaults.SearchText) {
		p[ParamSearch] = s.SearchText
	}
	if s.Category != defaults.Category {
		p[ParamCategory] = s.Category
	}
	if s.PetType != defaults.PetType {
		p[ParamPetType] = s.PetType
	}
	if s.Breed != defaults.Breed {
		p[ParamBreed] = s.Breed
	}
	if s.SupplyCondition != defaults.SupplyCondition {
		p[ParamCondition] = s.SupplyCondition
	}
	if s.SortBy != defaults.SortBy {
		p[ParamSortBy] = s.SortBy
	}
	if s.PriceMin != defaults.PriceMin {
		p[ParamMinPrice] = strconv.Itoa(s.PriceMin)
	}
	if s.PriceMax != defaults.PriceMax {
		p[ParamMaxPrice] = strconv.Itoa(s.PriceMax)
	}
	if s.Location != defaults.Location {
		p[ParamLocation] = s.Location
	}
	if s.FavoritesOnly != defaults.FavoritesOnly {
		p[ParamShowFavorites] = strconv.FormatBool(s.FavoritesOnly)
	}
	return p
}

// Decode never fails: missing, malformed and unknown values fall back to
// defaults, unknown keys are ignored, and the result is normalized through
// the same transitions the UI uses.
func Decode(p ParamMap, defaults FilterState) FilterState {
	s := defaults
	if v, ok := p[ParamSearch]; ok {
		s.SearchText = v
	}
	if v, ok := p[ParamCategory]; ok {
		s.Category = v
	}
	if v, ok := p[ParamPetType]; ok {
		s.PetType = v
	}
	if v, ok := p[ParamBreed]; ok {
		s.Breed = v
	}
	if v, ok := p[ParamCondition]; ok {
		s.SupplyCondition = v
	}
	if v, ok := p[ParamSortBy]; ok {
		s.SortBy = v
	}
	if v, ok := p[ParamLocation]; ok {
		s.Location = v
	}
	s.PriceMin = decodeInt(p, ParamMinPrice, defaults.PriceMin)
	s.PriceMax = decodeInt(p, ParamMaxPrice, defaults.PriceMax)
	if v, ok := p[ParamShowFavorites]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.FavoritesOnly = b
		}
	}
	return s.Normalize(defaults)
}

func decodeInt(p ParamMap, key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return def
	}
	return n
}

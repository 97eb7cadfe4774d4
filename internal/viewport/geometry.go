package viewport

import (
	"sort"

	"pawmart-backend/internal/models"
)

// Viewport is the visible vertical window, in logical pixels from the top of
// the page.
type Viewport struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Rect is the vertical extent of a rendered card.
type Rect struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Near reports whether r intersects the viewport grown by margin on both
// edges.
func (v Viewport) Near(r Rect, margin float64) bool {
	return r.Bottom >= v.Top-margin && r.Top <= v.Top+v.Height+margin
}

func sortByTop(keys []models.ListingKey, rects map[models.ListingKey]Rect) {
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rects[keys[i]], rects[keys[j]]
		if ri.Top != rj.Top {
			return ri.Top < rj.Top
		}
		if keys[i].Category != keys[j].Category {
			return keys[i].Category < keys[j].Category
		}
		return keys[i].ID < keys[j].ID
	})
}

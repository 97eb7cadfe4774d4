package discovery

import (
	"encoding/json"

	"pawmart-backend/internal/models"
	"pawmart-backend/internal/pkg/response"
	"pawmart-backend/internal/viewport"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

type cardRect struct {
	Key    string  `json:"key"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

type viewportRequest struct {
	Viewport viewport.Viewport `json:"viewport"`
	Cards    []cardRect        `json:"cards"`
}

type imageView struct {
	Key            string              `json:"key"`
	State          viewport.ImageState `json:"state"`
	Load           bool                `json:"load"`
	Placeholder    bool                `json:"placeholder"`
	PlaceholderURL string              `json:"placeholder_url,omitempty"`
}

func (h *Handlers) imageView(st viewport.CardState) imageView {
	out := imageView{
		Key:         st.Key.String(),
		State:       st.State,
		Load:        st.State != viewport.StatePending,
		Placeholder: st.Placeholder,
	}
	if st.Placeholder {
		out.PlaceholderURL = h.PlaceholderImageURL
	}
	return out
}

// POST /api/v1/discover/viewport reports the rendered card positions and
// returns which images may load.
func (h *Handlers) ReportViewport(c *fiber.Ctx) error {
	var req viewportRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Viewport.Height < 0 {
		return response.BadRequest(c, "viewport.height must not be negative")
	}
	rects := make(map[models.ListingKey]viewport.Rect, len(req.Cards))
	for _, card := range req.Cards {
		k, err := models.ParseListingKey(card.Key)
		if err != nil {
			return response.BadRequest(c, "Invalid card key: "+card.Key)
		}
		rects[k] = viewport.Rect{Top: card.Top, Bottom: card.Bottom}
	}
	states := h.view(c).ReportViewport(req.Viewport, rects)
	images := make([]imageView, len(states))
	for i, st := range states {
		images[i] = h.imageView(st)
	}
	return response.Success(c, "Viewport processed successfully", fiber.Map{"images": images}, nil)
}

type completeRequest struct {
	Failed bool `json:"failed"`
}

// POST /api/v1/discover/images/:key/complete marks a card image as finished.
// A failed load still completes; the card then shows the placeholder.
func (h *Handlers) CompleteImage(c *fiber.Ctx) error {
	k, err := models.ParseListingKey(utils.CopyString(c.Params("key")))
	if err != nil {
		return response.BadRequest(c, "Invalid listing key")
	}
	var req completeRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}
	st, promoted, ok := h.view(c).CompleteImage(k, req.Failed)
	if !ok {
		return response.NotFound(c, "Listing card not found")
	}
	next := make([]string, len(promoted))
	for i, p := range promoted {
		next[i] = p.String()
	}
	return response.Success(c, "Image completed successfully", fiber.Map{
		"image":    h.imageView(st),
		"promoted": next,
	}, nil)
}

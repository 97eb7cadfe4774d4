package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pawmart-backend/internal/contextkeys"
	"pawmart-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// DefaultPath is the listing endpoint of the marketplace API.
const DefaultPath = "/api/listings"

// Source yields the full catalog. Implementations must not return a partial
// catalog together with a nil error.
type Source interface {
	FetchAll(ctx context.Context) ([]models.Listing, error)
}

// Client is a Source backed by the marketplace HTTP API. It does not retry.
type Client struct {
	BaseURL string
	Path    string
	Client  *http.Client
}

// NewClient returns a client with the given request timeout.
func NewClient(baseURL, path string, timeout time.Duration) *Client {
	if path == "" {
		path = DefaultPath
	}
	return &Client{
		BaseURL: baseURL,
		Path:    path,
		Client:  &http.Client{Timeout: timeout},
	}
}

// FetchAll issues one GET and normalizes every usable record.
func (c *Client) FetchAll(ctx context.Context) ([]models.Listing, error) {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if c.BaseURL == "" {
		return nil, &FetchError{Message: "CATALOG_BASE_URL is not set"}
	}
	path := c.Path
	if path == "" {
		path = DefaultPath
	}
	url := strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-Id", traceID)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &FetchError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Status: resp.StatusCode, Message: fmt.Sprintf("read body: %v", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{Status: resp.StatusCode, Message: upstreamMessage(body, resp.Status)}
	}
	return decode(body)
}

func decode(body []byte) ([]models.Listing, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &ParseError{Message: err.Error()}
	}
	if p.Success == nil {
		return nil, &ParseError{Message: "missing success flag"}
	}
	if !*p.Success {
		msg := p.Message
		if msg == "" {
			msg = "success flag is false"
		}
		return nil, &ParseError{Message: msg}
	}
	records := p.Data
	if records == nil {
		records = p.Listings
	}
	if records == nil {
		return nil, &ParseError{Message: "missing listing array"}
	}

	out := make([]models.Listing, 0, len(records))
	dropped := 0
	for _, r := range records {
		l, ok := r.normalize()
		if !ok {
			dropped++
			continue
		}
		out = append(out, l)
	}
	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Int("kept", len(out)).Msg("catalog: dropped records without usable id or listing_type")
	}
	return out, nil
}

// upstreamMessage prefers the API's own message field over the raw status.
func upstreamMessage(body []byte, status string) string {
	var m struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &m); err == nil {
		if m.Message != "" {
			return m.Message
		}
		if m.Error != "" {
			return m.Error
		}
	}
	return status
}

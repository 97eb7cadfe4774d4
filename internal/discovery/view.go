package discovery

import (
	"context"
	"errors"
	"sync"

	"pawmart-backend/internal/catalog"
	"pawmart-backend/internal/metrics"
	"pawmart-backend/internal/models"
	"pawmart-backend/internal/viewport"

	"github.com/rs/zerolog/log"
)

var ErrViewClosed = errors.New("discovery view closed")

// Catalog error kinds reported to the front end.
const (
	KindFetchError = "fetch_error"
	KindParseError = "parse_error"
)

// ErrorKind classifies a catalog error. Anything that is not a ParseError is
// reported as a fetch error, since the caller treats both as retryable.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var perr *catalog.ParseError
	if errors.As(err, &perr) {
		return KindParseError
	}
	return KindFetchError
}

// FavoritesStore is the persisted favorites of one owner.
type FavoritesStore interface {
	Load(ctx context.Context) models.FavoriteSet
	Toggle(ctx context.Context, k models.ListingKey) models.FavoriteSet
}

type ViewConfig struct {
	Source    catalog.Source
	Favorites FavoritesStore
	Defaults  FilterState
	Images    viewport.Options
	Metrics   *metrics.Manager
}

// View is the discovery state of one browsing session: catalog, filter state
// and favorites in, visible listings, facets and image signals out. The
// visible list is recomputed synchronously on every input change.
type View struct {
	mu       sync.Mutex
	source   catalog.Source
	store    FavoritesStore
	images   *viewport.Scheduler
	metrics  *metrics.Manager
	defaults FilterState

	state     FilterState
	catalog   []models.Listing
	favorites models.FavoriteSet
	visible   []models.Listing

	fetchDone  chan struct{}
	fetching   bool
	catalogErr error
	closed     bool
}

// NewView loads the owner's favorites once; the catalog is fetched by
// Activate.
func NewView(ctx context.Context, cfg ViewConfig) *View {
	v := &View{
		source:    cfg.Source,
		store:     cfg.Favorites,
		images:    viewport.NewScheduler(cfg.Images),
		metrics:   cfg.Metrics,
		defaults:  cfg.Defaults,
		state:     cfg.Defaults,
		favorites: models.FavoriteSet{},
	}
	if v.store != nil {
		v.favorites = v.store.Load(ctx)
	}
	v.recomputeLocked()
	return v
}

// Activate fetches the catalog the first time it is called. Later calls wait
// for that fetch and return its error without fetching again.
func (v *View) Activate(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	if v.fetchDone == nil {
		return v.fetchLocked(ctx, false)
	}
	done := v.fetchDone
	v.mu.Unlock()
	return v.wait(ctx, done)
}

// Reload fetches the catalog again, bypassing any snapshot cache. It joins a
// fetch that is already running instead of starting a second one.
func (v *View) Reload(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	if v.fetching {
		done := v.fetchDone
		v.mu.Unlock()
		return v.wait(ctx, done)
	}
	return v.fetchLocked(ctx, true)
}

func (v *View) wait(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.catalogErr
}

type invalidator interface {
	Invalidate(ctx context.Context) error
}

// fetchLocked is entered with v.mu held and returns with it released.
func (v *View) fetchLocked(ctx context.Context, bypassCache bool) error {
	done := make(chan struct{})
	v.fetchDone = done
	v.fetching = true
	v.mu.Unlock()

	if bypassCache {
		if inv, ok := v.source.(invalidator); ok {
			if err := inv.Invalidate(ctx); err != nil {
				log.Warn().Err(err).Msg("catalog cache: invalidate failed")
			}
		}
	}

	var listings []models.Listing
	var err error
	if v.source == nil {
		err = &catalog.FetchError{Message: "no catalog source configured"}
	} else {
		listings, err = v.source.FetchAll(ctx)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	defer close(done)
	v.fetching = false
	if v.closed {
		// Nobody renders this view any more.
		return ErrViewClosed
	}
	v.recordFetch(listings, err)
	v.recomputeLocked()
	return v.catalogErr
}

func (v *View) recordFetch(listings []models.Listing, err error) {
	if err == nil {
		v.catalog = listings
		v.catalogErr = nil
		v.metrics.CatalogFetch("ok")
		log.Info().Int("listings", len(listings)).Msg("catalog: loaded")
		return
	}
	v.catalog = nil
	v.catalogErr = err
	kind := ErrorKind(err)
	v.metrics.CatalogFetch(kind)
	if kind == KindParseError {
		log.Error().Err(err).Str("error_type", kind).Msg("catalog: malformed payload")
		return
	}
	ev := log.Error().Err(err).Str("error_type", kind)
	var ferr *catalog.FetchError
	if errors.As(err, &ferr) {
		ev = ev.Int("status", ferr.Status)
	}
	ev.Msg("catalog: fetch failed")
}

func (v *View) recomputeLocked() {
	v.visible = Filter(v.catalog, v.state, v.favorites)
	keys := make([]models.ListingKey, len(v.visible))
	for i, l := range v.visible {
		keys[i] = l.Key()
	}
	v.metrics.ImagesPromoted(len(v.images.Sync(keys)))
}

// Apply replaces the filter state wholesale.
func (v *View) Apply(state FilterState) FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = state.Normalize(v.defaults)
	v.recomputeLocked()
	return v.state
}

// Update derives the next state from the current one.
func (v *View) Update(fn func(FilterState) FilterState) FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = fn(v.state)
	v.recomputeLocked()
	return v.state
}

// Reset restores the default filters.
func (v *View) Reset() FilterState {
	return v.Apply(v.defaults)
}

// ToggleFavorite flips k in the persisted favorites and recomputes.
func (v *View) ToggleFavorite(ctx context.Context, k models.ListingKey) models.FavoriteSet {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.store != nil {
		v.favorites = v.store.Toggle(ctx, k)
	} else {
		v.favorites = v.favorites.Toggle(k)
	}
	v.recomputeLocked()
	return v.favorites.Clone()
}

// Snapshot is everything the presentation layer renders from.
type Snapshot struct {
	Listings   []models.Listing
	State      FilterState
	Query      ParamMap
	Facets     Facets
	Favorites  models.FavoriteSet
	CatalogErr error
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	listings := make([]models.Listing, len(v.visible))
	copy(listings, v.visible)
	return Snapshot{
		Listings:   listings,
		State:      v.state,
		Query:      Encode(v.state, v.defaults),
		Facets:     BuildFacets(v.catalog, v.state.PetType),
		Favorites:  v.favorites.Clone(),
		CatalogErr: v.catalogErr,
	}
}

// Facets computes the vocabularies for petType over the full catalog.
func (v *View) Facets(petType string) Facets {
	v.mu.Lock()
	defer v.mu.Unlock()
	return BuildFacets(v.catalog, petType)
}

func (v *View) Defaults() FilterState {
	return v.defaults
}

// ShouldLoadImage is the per-card image signal.
func (v *View) ShouldLoadImage(k models.ListingKey) bool {
	return v.images.ShouldLoad(k)
}

// ReportViewport runs the proximity observer over the rendered card rects and
// returns the state of every reported card.
func (v *View) ReportViewport(vp viewport.Viewport, rects map[models.ListingKey]viewport.Rect) []viewport.CardState {
	promoted := v.images.Observe(vp, rects)
	v.metrics.ImagesPromoted(len(promoted))
	keys := make([]models.ListingKey, 0, len(rects))
	for k := range rects {
		keys = append(keys, k)
	}
	sortByID(keys)
	return v.images.Snapshot(keys)
}

// CompleteImage records a finished image load and returns the card's state
// plus any queued cards promoted by the freed slot.
func (v *View) CompleteImage(k models.ListingKey, failed bool) (viewport.CardState, []models.ListingKey, bool) {
	promoted := v.images.Complete(k, failed)
	v.metrics.ImagesPromoted(len(promoted))
	st, ok := v.images.State(k)
	return st, promoted, ok
}

// Close detaches the view; an in-flight fetch result is discarded.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

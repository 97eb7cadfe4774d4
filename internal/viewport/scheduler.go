package viewport

import (
	"sync"

	"pawmart-backend/internal/models"
)

// ImageState is the load state of one result card's image.
type ImageState string

const (
	StatePending ImageState = "pending"
	StateLoading ImageState = "loading"
	StateLoaded  ImageState = "loaded"
)

// DefaultLookaheadPx is how far outside the viewport a card may be and still
// start loading.
const DefaultLookaheadPx = 200

type Options struct {
	LookaheadPx float64
	// MaxInFlight bounds cards in StateLoading at once. Zero means no bound.
	MaxInFlight int
}

// CardState is the externally visible state of one card.
type CardState struct {
	Key         models.ListingKey `json:"-"`
	State       ImageState        `json:"state"`
	Placeholder bool              `json:"placeholder"`
}

type card struct {
	state       ImageState
	placeholder bool
	observed    bool
	queued      bool
	holdsSlot   bool
}

// Scheduler decides per card when its image may start loading. Every card
// moves pending -> loading -> loaded exactly once and is never demoted.
type Scheduler struct {
	mu       sync.Mutex
	opts     Options
	cards    map[models.ListingKey]*card
	queue    []models.ListingKey
	inFlight int
}

func NewScheduler(opts Options) *Scheduler {
	if opts.LookaheadPx <= 0 {
		opts.LookaheadPx = DefaultLookaheadPx
	}
	if opts.MaxInFlight < 0 {
		opts.MaxInFlight = 0
	}
	return &Scheduler{opts: opts, cards: map[models.ListingKey]*card{}}
}

// Register starts observing every key not seen before. Known cards keep their
// state. It returns the number of newly observed cards.
func (s *Scheduler) Register(keys []models.ListingKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, k := range keys {
		if _, ok := s.cards[k]; ok {
			continue
		}
		s.cards[k] = &card{state: StatePending, observed: true}
		added++
	}
	return added
}

// Sync registers keys as the current result set. Cards that dropped out of it
// give up their in-flight slot and their queue position without being
// demoted: a loading card stays loading, a queued card becomes observable
// again. Freed capacity promotes queued cards, which are returned.
func (s *Scheduler) Sync(keys []models.ListingKey) []models.ListingKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := make(map[models.ListingKey]struct{}, len(keys))
	for _, k := range keys {
		current[k] = struct{}{}
		if _, ok := s.cards[k]; !ok {
			s.cards[k] = &card{state: StatePending, observed: true}
		}
	}
	for k, c := range s.cards {
		if _, ok := current[k]; ok {
			continue
		}
		if c.holdsSlot {
			c.holdsSlot = false
			s.inFlight--
		}
		if c.queued {
			c.queued = false
			c.observed = true
		}
	}
	return s.drain()
}

// Intersect is the proximity callback for one card. It is idempotent and
// reports whether the card entered StateLoading because of this call.
func (s *Scheduler) Intersect(k models.ListingKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intersect(k)
}

func (s *Scheduler) intersect(k models.ListingKey) bool {
	c, ok := s.cards[k]
	if !ok || !c.observed {
		return false
	}
	c.observed = false
	if s.opts.MaxInFlight > 0 && s.inFlight >= s.opts.MaxInFlight {
		c.queued = true
		s.queue = append(s.queue, k)
		return false
	}
	s.promote(c)
	return true
}

func (s *Scheduler) promote(c *card) {
	c.queued = false
	c.state = StateLoading
	c.holdsSlot = true
	s.inFlight++
}

// drain promotes queued cards in FIFO order while capacity allows.
func (s *Scheduler) drain() []models.ListingKey {
	var promoted []models.ListingKey
	for len(s.queue) > 0 && (s.opts.MaxInFlight == 0 || s.inFlight < s.opts.MaxInFlight) {
		next := s.queue[0]
		s.queue = s.queue[1:]
		qc := s.cards[next]
		if qc == nil || !qc.queued {
			continue
		}
		s.promote(qc)
		promoted = append(promoted, next)
	}
	return promoted
}

// Observe is the geometric observer: every observed card whose rect lies
// within the lookahead margin of vp is intersected. It returns the cards
// promoted by this call.
func (s *Scheduler) Observe(vp Viewport, rects map[models.ListingKey]Rect) []models.ListingKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	near := make([]models.ListingKey, 0, len(rects))
	for k, r := range rects {
		if vp.Near(r, s.opts.LookaheadPx) {
			near = append(near, k)
		}
	}
	// Top-down, so a bounded queue fills in reading order.
	sortByTop(near, rects)
	var promoted []models.ListingKey
	for _, k := range near {
		if s.intersect(k) {
			promoted = append(promoted, k)
		}
	}
	return promoted
}

// Complete marks a loading card as loaded. failed means the image could not
// be fetched and the placeholder is shown instead. Freed capacity promotes
// queued cards, which are returned. A card released by Sync completes
// without freeing a slot a second time.
func (s *Scheduler) Complete(k models.ListingKey, failed bool) []models.ListingKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[k]
	if !ok || c.state != StateLoading {
		return nil
	}
	c.state = StateLoaded
	c.placeholder = failed
	if c.holdsSlot {
		c.holdsSlot = false
		s.inFlight--
	}
	return s.drain()
}

// ShouldLoad reports whether the card's image may be requested.
func (s *Scheduler) ShouldLoad(k models.ListingKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[k]
	return ok && c.state != StatePending
}

func (s *Scheduler) State(k models.ListingKey) (CardState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[k]
	if !ok {
		return CardState{}, false
	}
	return CardState{Key: k, State: c.state, Placeholder: c.placeholder}, true
}

// Snapshot returns the state of the given cards, skipping unknown ones.
func (s *Scheduler) Snapshot(keys []models.ListingKey) []CardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CardState, 0, len(keys))
	for _, k := range keys {
		c, ok := s.cards[k]
		if !ok {
			continue
		}
		out = append(out, CardState{Key: k, State: c.state, Placeholder: c.placeholder})
	}
	return out
}

// InFlight returns the number of cards currently loading.
func (s *Scheduler) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

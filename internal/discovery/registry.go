package discovery

import (
	"context"
	"sort"
	"sync"
	"time"

	"pawmart-backend/internal/models"
)

// Factory builds the view of a session owner.
type Factory func(ctx context.Context, owner string) *View

type entry struct {
	view     *View
	lastUsed time.Time
	ready    chan struct{}
}

// Registry keeps one View per browsing session. Views idle for longer than
// MaxIdle are closed the next time the registry is accessed; there is no
// background sweeper.
type Registry struct {
	Factory Factory
	MaxIdle time.Duration
	Now     func() time.Time

	mu    sync.Mutex
	views map[string]*entry
}

func NewRegistry(factory Factory, maxIdle time.Duration) *Registry {
	return &Registry{Factory: factory, MaxIdle: maxIdle, Now: time.Now, views: map[string]*entry{}}
}

// Get returns the owner's view, creating it on first use. The factory runs
// outside the registry lock; concurrent first requests of one owner wait for
// the same view.
func (r *Registry) Get(ctx context.Context, owner string) *View {
	r.mu.Lock()
	now := r.Now()
	r.sweepLocked(now, owner)
	if e, ok := r.views[owner]; ok {
		e.lastUsed = now
		r.mu.Unlock()
		<-e.ready
		return e.view
	}
	e := &entry{lastUsed: now, ready: make(chan struct{})}
	r.views[owner] = e
	r.mu.Unlock()

	v := r.Factory(ctx, owner)

	r.mu.Lock()
	e.view = v
	close(e.ready)
	dropped := r.views[owner] != e
	r.mu.Unlock()
	if dropped {
		v.Close()
	}
	return v
}

// Drop closes and forgets the owner's view.
func (r *Registry) Drop(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.views[owner]; ok {
		if e.view != nil {
			e.view.Close()
		}
		delete(r.views, owner)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func (r *Registry) sweepLocked(now time.Time, keep string) {
	if r.MaxIdle <= 0 {
		return
	}
	for owner, e := range r.views {
		if owner == keep || e.view == nil || now.Sub(e.lastUsed) <= r.MaxIdle {
			continue
		}
		e.view.Close()
		delete(r.views, owner)
	}
}

func sortByID(keys []models.ListingKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ID != keys[j].ID {
			return keys[i].ID < keys[j].ID
		}
		return keys[i].Category < keys[j].Category
	})
}

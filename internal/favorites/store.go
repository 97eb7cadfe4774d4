package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"pawmart-backend/internal/metrics"
	"pawmart-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned by a Backend when the owner has no stored set.
var ErrNotFound = errors.New("favorites not found")

// PersistenceError wraps a Backend failure. The store logs and swallows it;
// it is exposed through LastError for diagnostics.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "favorites " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Backend stores one JSON payload per owner.
type Backend interface {
	Read(ctx context.Context, owner string) ([]byte, error)
	Write(ctx context.Context, owner string, payload []byte) error
}

// Store is the favorites set of one owner. Every toggle is written through
// to the backend before it returns; toggles are serialized.
type Store struct {
	Backend Backend
	Owner   string
	Metrics *metrics.Manager

	mu      sync.Mutex
	set     models.FavoriteSet
	loaded  bool
	lastErr error
}

func NewStore(backend Backend, owner string, m *metrics.Manager) *Store {
	return &Store{Backend: backend, Owner: owner, Metrics: m}
}

// Load reads the stored set. It never fails: a missing or corrupt payload or
// a backend error yields an empty set.
func (s *Store) Load(ctx context.Context) models.FavoriteSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = s.read(ctx)
	s.loaded = true
	return s.set.Clone()
}

func (s *Store) read(ctx context.Context) models.FavoriteSet {
	if s.Backend == nil {
		return models.FavoriteSet{}
	}
	b, err := s.Backend.Read(ctx, s.Owner)
	if errors.Is(err, ErrNotFound) {
		return models.FavoriteSet{}
	}
	if err != nil {
		s.fail("load", err)
		return models.FavoriteSet{}
	}
	var set models.FavoriteSet
	if err := json.Unmarshal(b, &set); err != nil {
		s.fail("load", err)
		return models.FavoriteSet{}
	}
	if set == nil {
		set = models.FavoriteSet{}
	}
	return set
}

// Toggle flips k, persists the whole set and returns it. A failed write is
// swallowed: the returned set still reflects the toggle.
func (s *Store) Toggle(ctx context.Context, k models.ListingKey) models.FavoriteSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.set = s.read(ctx)
		s.loaded = true
	}
	s.set = s.set.Toggle(k)
	s.Metrics.FavoriteToggle()

	if s.Backend != nil {
		payload, err := json.Marshal(s.set)
		if err == nil {
			err = s.Backend.Write(ctx, s.Owner, payload)
		}
		if err != nil {
			s.fail("write", err)
		}
	}
	return s.set.Clone()
}

// Current returns the in-memory set without touching the backend.
func (s *Store) Current() models.FavoriteSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Clone()
}

// LastError returns the most recent swallowed PersistenceError, if any.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) fail(op string, err error) {
	perr := &PersistenceError{Op: op, Err: err}
	s.lastErr = perr
	s.Metrics.PersistenceError(op)
	log.Warn().Err(err).Str("owner", s.Owner).Str("op", op).Msg("favorites: persistence failed, continuing without it")
}

package viewport

import (
	"sync"
	"testing"

	"pawmart-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pet(id int64) models.ListingKey {
	return models.ListingKey{ID: id, Category: models.CategoryPet}
}

func TestScheduler_OneShotLifecycle(t *testing.T) {
	s := NewScheduler(Options{})
	require.Equal(t, 1, s.Register([]models.ListingKey{pet(1)}))

	st, ok := s.State(pet(1))
	require.True(t, ok)
	assert.Equal(t, StatePending, st.State)
	assert.False(t, s.ShouldLoad(pet(1)))

	assert.True(t, s.Intersect(pet(1)))
	assert.True(t, s.ShouldLoad(pet(1)))
	assert.False(t, s.Intersect(pet(1)), "second intersection is a no-op")
	assert.Equal(t, 1, s.InFlight())

	s.Complete(pet(1), false)
	st, _ = s.State(pet(1))
	assert.Equal(t, StateLoaded, st.State)
	assert.False(t, st.Placeholder)
	assert.Equal(t, 0, s.InFlight())

	// Loaded cards are never demoted.
	s.Intersect(pet(1))
	s.Complete(pet(1), true)
	st, _ = s.State(pet(1))
	assert.Equal(t, StateLoaded, st.State)
	assert.False(t, st.Placeholder)
}

func TestScheduler_FailedLoadShowsPlaceholder(t *testing.T) {
	s := NewScheduler(Options{})
	s.Register([]models.ListingKey{pet(1)})
	s.Intersect(pet(1))
	s.Complete(pet(1), true)
	st, _ := s.State(pet(1))
	assert.Equal(t, StateLoaded, st.State)
	assert.True(t, st.Placeholder)
}

func TestScheduler_UnknownKeys(t *testing.T) {
	s := NewScheduler(Options{})
	assert.False(t, s.Intersect(pet(7)))
	assert.Nil(t, s.Complete(pet(7), false))
	assert.False(t, s.ShouldLoad(pet(7)))
	_, ok := s.State(pet(7))
	assert.False(t, ok)
}

func TestScheduler_RegisterKeepsExistingState(t *testing.T) {
	s := NewScheduler(Options{})
	s.Register([]models.ListingKey{pet(1), pet(2)})
	s.Intersect(pet(1))
	assert.Equal(t, 1, s.Register([]models.ListingKey{pet(1), pet(2), pet(3)}))
	assert.True(t, s.ShouldLoad(pet(1)))
}

func TestScheduler_MaxInFlightQueuesInOrder(t *testing.T) {
	s := NewScheduler(Options{MaxInFlight: 2})
	keys := []models.ListingKey{pet(1), pet(2), pet(3), pet(4)}
	s.Register(keys)

	rects := map[models.ListingKey]Rect{
		pet(4): {Top: 300, Bottom: 390},
		pet(3): {Top: 200, Bottom: 290},
		pet(2): {Top: 100, Bottom: 190},
		pet(1): {Top: 0, Bottom: 90},
	}
	promoted := s.Observe(Viewport{Top: 0, Height: 1000}, rects)
	assert.Equal(t, []models.ListingKey{pet(1), pet(2)}, promoted)
	assert.Equal(t, 2, s.InFlight())
	assert.False(t, s.ShouldLoad(pet(3)))

	assert.Equal(t, []models.ListingKey{pet(3)}, s.Complete(pet(1), false))
	assert.Equal(t, []models.ListingKey{pet(4)}, s.Complete(pet(2), false))
	assert.Nil(t, s.Complete(pet(3), false))
	assert.Equal(t, 1, s.InFlight())

	// Reporting again does not re-queue anything.
	assert.Empty(t, s.Observe(Viewport{Top: 0, Height: 1000}, rects))
}

func TestScheduler_ObserveUsesLookahead(t *testing.T) {
	s := NewScheduler(Options{LookaheadPx: 200})
	s.Register([]models.ListingKey{pet(1), pet(2), pet(3)})
	promoted := s.Observe(Viewport{Top: 1000, Height: 500}, map[models.ListingKey]Rect{
		pet(1): {Top: 700, Bottom: 800},   // 200px above
		pet(2): {Top: 1700, Bottom: 1900}, // 200px below
		pet(3): {Top: 2000, Bottom: 2100}, // too far
	})
	assert.ElementsMatch(t, []models.ListingKey{pet(1), pet(2)}, promoted)
	assert.False(t, s.ShouldLoad(pet(3)))
}

func TestScheduler_DefaultLookahead(t *testing.T) {
	s := NewScheduler(Options{})
	s.Register([]models.ListingKey{pet(1)})
	promoted := s.Observe(Viewport{Top: 0, Height: 100}, map[models.ListingKey]Rect{
		pet(1): {Top: 100 + DefaultLookaheadPx, Bottom: 400},
	})
	assert.Equal(t, []models.ListingKey{pet(1)}, promoted)
}

func TestScheduler_Snapshot(t *testing.T) {
	s := NewScheduler(Options{})
	s.Register([]models.ListingKey{pet(1), pet(2)})
	s.Intersect(pet(2))
	snap := s.Snapshot([]models.ListingKey{pet(1), pet(2), pet(9)})
	require.Len(t, snap, 2)
	assert.Equal(t, StatePending, snap[0].State)
	assert.Equal(t, StateLoading, snap[1].State)
}

func TestScheduler_ConcurrentIntersectPromotesOnce(t *testing.T) {
	s := NewScheduler(Options{})
	s.Register([]models.ListingKey{pet(1)})

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Intersect(pet(1)) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, s.InFlight())
}

func TestViewport_Near(t *testing.T) {
	vp := Viewport{Top: 500, Height: 500}
	assert.True(t, vp.Near(Rect{Top: 600, Bottom: 700}, 0))
	assert.True(t, vp.Near(Rect{Top: 0, Bottom: 500}, 0), "touching edge")
	assert.False(t, vp.Near(Rect{Top: 0, Bottom: 499}, 0))
	assert.True(t, vp.Near(Rect{Top: 0, Bottom: 499}, 1))
	assert.False(t, vp.Near(Rect{Top: 1101, Bottom: 1200}, 100))
}

func TestScheduler_SyncReleasesSlotsOfDroppedCards(t *testing.T) {
	s := NewScheduler(Options{MaxInFlight: 1})
	s.Sync([]models.ListingKey{pet(1), pet(2)})
	vp := Viewport{Top: 0, Height: 1000}

	assert.Equal(t, []models.ListingKey{pet(1)}, s.Observe(vp, map[models.ListingKey]Rect{pet(1): {Top: 0, Bottom: 90}}))
	assert.Equal(t, 1, s.InFlight())

	// pet(1) is filtered out before its completion arrives.
	assert.Empty(t, s.Sync([]models.ListingKey{pet(2)}))
	assert.Equal(t, 0, s.InFlight())
	assert.True(t, s.ShouldLoad(pet(1)), "a released card is not demoted")

	// Filters reset: pet(2) can still load.
	s.Sync([]models.ListingKey{pet(1), pet(2)})
	for i := 0; i < 3; i++ {
		s.Observe(vp, map[models.ListingKey]Rect{pet(2): {Top: 100, Bottom: 190}})
	}
	assert.True(t, s.ShouldLoad(pet(2)))
	assert.Equal(t, 1, s.InFlight())

	// The late completion of pet(1) does not free pet(2)'s slot.
	s.Complete(pet(1), false)
	st, _ := s.State(pet(1))
	assert.Equal(t, StateLoaded, st.State)
	assert.Equal(t, 1, s.InFlight())
}

func TestScheduler_SyncPromotesQueueAndRequeuesDroppedCards(t *testing.T) {
	s := NewScheduler(Options{MaxInFlight: 1})
	s.Sync([]models.ListingKey{pet(1), pet(2), pet(3)})
	rects := map[models.ListingKey]Rect{
		pet(1): {Top: 0, Bottom: 90},
		pet(2): {Top: 100, Bottom: 190},
		pet(3): {Top: 200, Bottom: 290},
	}
	s.Observe(Viewport{Top: 0, Height: 1000}, rects)
	require.True(t, s.ShouldLoad(pet(1)))

	// pet(1) and pet(2) drop out; the freed slot goes to pet(3).
	assert.Equal(t, []models.ListingKey{pet(3)}, s.Sync([]models.ListingKey{pet(3)}))
	assert.False(t, s.ShouldLoad(pet(2)))

	// Back in the results, pet(2) is observable again.
	s.Sync([]models.ListingKey{pet(1), pet(2), pet(3)})
	s.Complete(pet(3), false)
	assert.Equal(t, []models.ListingKey{pet(2)}, s.Observe(Viewport{Top: 0, Height: 1000}, rects))
}

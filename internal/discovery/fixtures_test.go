package discovery

import (
	"context"
	"sync"
	"time"

	"pawmart-backend/internal/models"
)

func price(v float64) *float64 { return &v }

func day(d int) time.Time { return time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC) }

// fixtureCatalog holds a pet and a supply that share raw id 1.
func fixtureCatalog() []models.Listing {
	return []models.Listing{
		{ID: 1, Category: models.CategoryPet, Name: "Buddy", PetType: "dog", Breed: "Labrador", Price: price(500), Location: "Austin", CreatedAt: day(3)},
		{ID: 2, Category: models.CategoryPet, Name: "Whiskers", PetType: "cat", Breed: "Siamese", Price: price(300), Location: "Denver", CreatedAt: day(2)},
		{ID: 1, Category: models.CategorySupply, Name: "Dog Bed", Condition: "new", Price: price(40), Location: "Austin", CreatedAt: day(4)},
		{ID: 2, Category: models.CategorySupply, Name: "Cat Tree", Condition: "used", Price: price(120), Location: "Boston", CreatedAt: day(1)},
		{ID: 3, Category: models.CategoryPet, Name: "Rex", PetType: "dog", Breed: "German Shepherd", Location: "Austin", CreatedAt: day(5)},
	}
}

func keysOf(ls []models.Listing) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Key().String()
	}
	return out
}

type fakeSource struct {
	mu       sync.Mutex
	listings []models.Listing
	err      error
	calls    int
	started  chan struct{}
	release  chan struct{}
}

func (f *fakeSource) FetchAll(ctx context.Context) ([]models.Listing, error) {
	f.mu.Lock()
	f.calls++
	started, release := f.started, f.release
	f.mu.Unlock()
	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listings, f.err
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memFavorites struct {
	set     models.FavoriteSet
	toggles int
}

func (m *memFavorites) Load(ctx context.Context) models.FavoriteSet {
	if m.set == nil {
		m.set = models.FavoriteSet{}
	}
	return m.set.Clone()
}

func (m *memFavorites) Toggle(ctx context.Context, k models.ListingKey) models.FavoriteSet {
	m.toggles++
	m.set = m.set.Toggle(k)
	return m.set.Clone()
}

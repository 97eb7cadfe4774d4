package discovery

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestRegistry(maxIdle time.Duration) (*Registry, *time.Time, *int) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	created := 0
	r := NewRegistry(func(ctx context.Context, owner string) *View {
		created++
		return newTestView(&fakeSource{listings: fixtureCatalog()}, nil)
	}, maxIdle)
	r.Now = func() time.Time { return now }
	return r, &now, &created
}

func TestRegistry_OneViewPerOwner(t *testing.T) {
	r, _, created := newTestRegistry(time.Minute)
	a := r.Get(context.Background(), "a")
	assert.Same(t, a, r.Get(context.Background(), "a"))
	assert.NotSame(t, a, r.Get(context.Background(), "b"))
	assert.Equal(t, 2, *created)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_SweepsIdleViews(t *testing.T) {
	r, now, _ := newTestRegistry(time.Minute)
	a := r.Get(context.Background(), "a")
	*now = now.Add(30 * time.Second)
	r.Get(context.Background(), "b")
	*now = now.Add(45 * time.Second)

	// a has been idle for 75s, b for 45s.
	r.Get(context.Background(), "b")
	assert.Equal(t, 1, r.Len())
	assert.ErrorIs(t, a.Activate(context.Background()), ErrViewClosed)
	assert.NotSame(t, a, r.Get(context.Background(), "a"))
}

func TestRegistry_RequestedOwnerSurvivesSweep(t *testing.T) {
	r, now, created := newTestRegistry(time.Minute)
	a := r.Get(context.Background(), "a")
	*now = now.Add(time.Hour)
	assert.Same(t, a, r.Get(context.Background(), "a"))
	assert.Equal(t, 1, *created)
}

func TestRegistry_Drop(t *testing.T) {
	r, _, _ := newTestRegistry(0)
	a := r.Get(context.Background(), "a")
	r.Drop("a")
	assert.Equal(t, 0, r.Len())
	assert.ErrorIs(t, a.Activate(context.Background()), ErrViewClosed)
	r.Drop("missing")
}

func TestRegistry_SlowFactoryDoesNotBlockOtherOwners(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	r := NewRegistry(func(ctx context.Context, owner string) *View {
		atomic.AddInt32(&calls, 1)
		if owner == "slow" {
			<-release
		}
		return newTestView(&fakeSource{listings: fixtureCatalog()}, nil)
	}, time.Hour)

	slow := make(chan *View, 2)
	for i := 0; i < 2; i++ {
		go func() { slow <- r.Get(context.Background(), "slow") }()
	}

	fast := make(chan *View, 1)
	go func() { fast <- r.Get(context.Background(), "fast") }()
	select {
	case v := <-fast:
		assert.NotNil(t, v)
	case <-time.After(2 * time.Second):
		t.Fatal("Get for another owner waited on a slow factory")
	}

	close(release)
	a, b := <-slow, <-slow
	assert.Same(t, a, b)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 2, r.Len())
}

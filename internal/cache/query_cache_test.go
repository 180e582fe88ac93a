package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roomsPage1 = Key{Resource: ResourceRooms, Page: 1, Limit: 10}

func staticFetch(v any, calls *int32) Fetcher {
	return func(ctx context.Context) (any, error) {
		atomic.AddInt32(calls, 1)
		return v, nil
	}
}

func TestQueryCache_LoadCachesSuccess(t *testing.T) {
	c := NewQueryCache(0)
	var calls int32

	first := c.Load(context.Background(), roomsPage1, staticFetch("page-1", &calls))
	second := c.Load(context.Background(), roomsPage1, staticFetch("other", &calls))

	assert.Equal(t, StatusSuccess, first.Status)
	assert.Equal(t, "page-1", first.Data)
	assert.Equal(t, "page-1", second.Data)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestQueryCache_DistinctKeys(t *testing.T) {
	c := NewQueryCache(0)
	var calls int32

	c.Load(context.Background(), roomsPage1, staticFetch("a", &calls))
	c.Load(context.Background(), Key{Resource: ResourceRooms, Page: 2, Limit: 10}, staticFetch("b", &calls))
	c.Load(context.Background(), Key{Resource: ResourceBookings, Page: 1, Limit: 10}, staticFetch("c", &calls))

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueryCache_ErrorIsCachedThenRetried(t *testing.T) {
	c := NewQueryCache(0)
	boom := errors.New("backend down")

	res := c.Load(context.Background(), roomsPage1, func(ctx context.Context) (any, error) {
		return nil, boom
	})
	assert.Equal(t, StatusError, res.Status)
	assert.ErrorIs(t, res.Err, boom)

	peek := c.Peek(roomsPage1)
	assert.Equal(t, StatusError, peek.Status)
	assert.ErrorIs(t, peek.Err, boom)

	var calls int32
	res = c.Load(context.Background(), roomsPage1, staticFetch("ok", &calls))
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestQueryCache_PeekIdleAndInFlight(t *testing.T) {
	c := NewQueryCache(0)
	assert.Equal(t, StatusLoading, c.Peek(roomsPage1).Status)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan Result)
	go func() {
		done <- c.Load(context.Background(), roomsPage1, func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "page", nil
		})
	}()

	<-started
	assert.Equal(t, StatusLoading, c.Peek(roomsPage1).Status)
	close(release)
	<-done

	peek := c.Peek(roomsPage1)
	assert.Equal(t, StatusSuccess, peek.Status)
	assert.Equal(t, "page", peek.Data)
}

func TestQueryCache_ConcurrentLoadsShareOneFetch(t *testing.T) {
	c := NewQueryCache(0)
	var calls int32
	release := make(chan struct{})

	fetch := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]Result, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Load(context.Background(), roomsPage1, fetch)
		}(i)
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, "shared", r.Data)
	}
}

func TestQueryCache_InvalidateDropsAllPagesOfResource(t *testing.T) {
	c := NewQueryCache(0)
	var calls int32
	c.Load(context.Background(), roomsPage1, staticFetch("r1", &calls))
	c.Load(context.Background(), Key{Resource: ResourceRooms, Page: 2, Limit: 5}, staticFetch("r2", &calls))
	bookings := Key{Resource: ResourceBookings, Page: 1, Limit: 10}
	c.Load(context.Background(), bookings, staticFetch("b1", &calls))

	assert.Equal(t, 2, c.Invalidate(ResourceRooms))
	assert.Equal(t, StatusLoading, c.Peek(roomsPage1).Status)
	assert.Equal(t, StatusSuccess, c.Peek(bookings).Status)

	c.Load(context.Background(), roomsPage1, staticFetch("r1-new", &calls))
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	assert.Equal(t, "r1-new", c.Peek(roomsPage1).Data)
	assert.Equal(t, uint64(1), c.Stats().Invalidations)
}

func TestQueryCache_FetchStartedBeforeInvalidateDoesNotRepopulate(t *testing.T) {
	c := NewQueryCache(0)
	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan Result)

	go func() {
		done <- c.Load(context.Background(), roomsPage1, func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()

	<-started
	c.Invalidate(ResourceRooms)

	var calls int32
	fresh := c.Load(context.Background(), roomsPage1, staticFetch("fresh", &calls))
	assert.Equal(t, "fresh", fresh.Data)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "post-invalidation load must not join the stale fetch")

	close(release)
	stale := <-done
	assert.Equal(t, "stale", stale.Data)
	assert.Equal(t, "fresh", c.Peek(roomsPage1).Data)
}

func TestQueryCache_StaleAfter(t *testing.T) {
	c := NewQueryCache(time.Minute)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	var calls int32
	c.Load(context.Background(), roomsPage1, staticFetch("v", &calls))
	now = now.Add(30 * time.Second)
	c.Load(context.Background(), roomsPage1, staticFetch("v", &calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	now = now.Add(time.Minute)
	c.Load(context.Background(), roomsPage1, staticFetch("v", &calls))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestQueryCache_CancelledCallerStillCaches(t *testing.T) {
	c := NewQueryCache(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Load(ctx, roomsPage1, func(ctx context.Context) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return "ok", nil
	})
	assert.Equal(t, StatusSuccess, res.Status)
}

func TestQueryCache_Sweep(t *testing.T) {
	c := NewQueryCache(0)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	var calls int32
	c.Load(context.Background(), roomsPage1, staticFetch("old", &calls))
	now = now.Add(10 * time.Minute)
	recent := Key{Resource: ResourceRooms, Page: 2, Limit: 10}
	c.Load(context.Background(), recent, staticFetch("new", &calls))

	assert.Equal(t, 1, c.Sweep(5*time.Minute))
	assert.Equal(t, StatusLoading, c.Peek(roomsPage1).Status)
	assert.Equal(t, StatusSuccess, c.Peek(recent).Status)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestTypedLoad(t *testing.T) {
	c := NewQueryCache(0)
	res := Load(context.Background(), c, roomsPage1, func(ctx context.Context) ([]int, error) {
		return []int{1, 2}, nil
	})
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, []int{1, 2}, res.Value)

	peeked := Peek[[]int](c, roomsPage1)
	assert.Equal(t, []int{1, 2}, peeked.Value)

	empty := Peek[[]int](c, Key{Resource: ResourceBookings, Page: 1, Limit: 10})
	assert.Nil(t, empty.Value)
}

func TestQueryCache_Snapshot(t *testing.T) {
	c := NewQueryCache(0)
	var calls int32
	c.Load(context.Background(), roomsPage1, staticFetch("r1", &calls))
	c.Load(context.Background(), Key{Resource: ResourceRooms, Page: 2, Limit: 10}, func(ctx context.Context) (any, error) {
		return nil, errors.New("boom")
	})
	c.Load(context.Background(), Key{Resource: ResourceBookings, Page: 1, Limit: 10}, staticFetch("b1", &calls))

	assert.Equal(t, []any{"r1"}, c.Snapshot(ResourceRooms))
	assert.Equal(t, []any{"b1"}, c.Snapshot(ResourceBookings))
}

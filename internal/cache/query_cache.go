package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bassista/room_desk/internal/logger"
	"golang.org/x/sync/singleflight"
)

// Resource names a cached list.
type Resource string

const (
	ResourceRooms    Resource = "rooms"
	ResourceBookings Resource = "bookings"
)

// Status of a cached query.
type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

// Key identifies one page of one resource.
type Key struct {
	Resource Resource
	Page     int
	Limit    int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d:%d", k.Resource, k.Page, k.Limit)
}

// Result is a point-in-time view of a cached query.
type Result struct {
	Status    Status
	Data      any
	Err       error
	UpdatedAt time.Time
}

// Stats are the cache counters.
type Stats struct {
	Entries       int    `json:"entries"`
	InFlight      int    `json:"in_flight"`
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Fetches       uint64 `json:"fetches"`
	Invalidations uint64 `json:"invalidations"`
	Evictions     uint64 `json:"evictions"`
}

type entry struct {
	status     Status
	data       any
	err        error
	updatedAt  time.Time
	lastAccess time.Time
}

// QueryCache keeps list pages keyed by (resource, page, limit).
// Concurrent loads of one key share a single fetch. Invalidate bumps the
// resource generation so fetches started earlier never repopulate it.
type QueryCache struct {
	mu         sync.Mutex
	entries    map[Key]*entry
	inflight   map[Key]int
	gens       map[Resource]uint64
	staleAfter time.Duration
	group      singleflight.Group
	now        func() time.Time

	stats Stats
}

// NewQueryCache creates an empty cache. staleAfter 0 keeps successes fresh
// until invalidated.
func NewQueryCache(staleAfter time.Duration) *QueryCache {
	return &QueryCache{
		entries:    make(map[Key]*entry),
		inflight:   make(map[Key]int),
		gens:       make(map[Resource]uint64),
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

func (c *QueryCache) freshLocked(e *entry, now time.Time) bool {
	if e.status != StatusSuccess {
		return false
	}
	return c.staleAfter <= 0 || now.Sub(e.updatedAt) < c.staleAfter
}

// Load returns the cached page when fresh, otherwise fetches it.
// Errors are cached for display and retried by the next Load.
func (c *QueryCache) Load(ctx context.Context, key Key, fetch Fetcher) Result {
	c.mu.Lock()
	now := c.now()
	if e, ok := c.entries[key]; ok && c.freshLocked(e, now) {
		e.lastAccess = now
		c.stats.Hits++
		res := Result{Status: e.status, Data: e.data, UpdatedAt: e.updatedAt}
		c.mu.Unlock()
		return res
	}
	c.stats.Misses++
	gen := c.gens[key.Resource]
	c.mu.Unlock()

	flightKey := fmt.Sprintf("%s#%d", key, gen)
	v, err, shared := c.group.Do(flightKey, func() (any, error) {
		return c.fetch(ctx, key, gen, fetch)
	})
	if shared {
		logger.WithComponent("cache").Tracef("joined in-flight fetch for %s", key)
	}

	if err != nil {
		return Result{Status: StatusError, Err: err, UpdatedAt: c.now()}
	}
	return Result{Status: StatusSuccess, Data: v, UpdatedAt: c.now()}
}

func (c *QueryCache) fetch(ctx context.Context, key Key, gen uint64, fetch Fetcher) (any, error) {
	c.mu.Lock()
	c.inflight[key]++
	c.stats.Fetches++
	c.mu.Unlock()

	// Joined callers must not fail because the first caller went away.
	data, err := fetch(context.WithoutCancel(ctx))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[key]--; c.inflight[key] <= 0 {
		delete(c.inflight, key)
	}
	if c.gens[key.Resource] != gen {
		logger.WithComponent("cache").Debugf("discarding fetch of %s started before invalidation", key)
		return data, err
	}

	now := c.now()
	e := &entry{updatedAt: now, lastAccess: now}
	if err != nil {
		e.status = StatusError
		e.err = err
		if prev, ok := c.entries[key]; ok {
			e.data = prev.data
		}
	} else {
		e.status = StatusSuccess
		e.data = data
	}
	c.entries[key] = e
	return data, err
}

// Peek reports the key's state without fetching.
func (c *QueryCache) Peek(key Key) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if c.inflight[key] > 0 {
		res := Result{Status: StatusLoading}
		if ok {
			res.Data = e.data
			res.UpdatedAt = e.updatedAt
		}
		return res
	}
	if !ok {
		return Result{Status: StatusLoading}
	}
	e.lastAccess = c.now()
	return Result{Status: e.status, Data: e.data, Err: e.err, UpdatedAt: e.updatedAt}
}

// Invalidate drops every page of resource and returns how many were dropped.
func (c *QueryCache) Invalidate(resource Resource) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[resource]++
	c.stats.Invalidations++
	dropped := 0
	for key := range c.entries {
		if key.Resource == resource {
			delete(c.entries, key)
			dropped++
		}
	}
	logger.WithComponent("cache").Debugf("invalidated %s: %d entries dropped", resource, dropped)
	return dropped
}

// Sweep evicts entries not read for idle.
func (c *QueryCache) Sweep(idle time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-idle)
	evicted := 0
	for key, e := range c.entries {
		if e.lastAccess.Before(cutoff) {
			delete(c.entries, key)
			evicted++
		}
	}
	c.stats.Evictions += uint64(evicted)
	return evicted
}

// Snapshot returns the data of every successful entry of resource.
func (c *QueryCache) Snapshot(resource Resource) []any {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []any
	for key, e := range c.entries {
		if key.Resource == resource && e.status == StatusSuccess {
			out = append(out, e.data)
		}
	}
	return out
}

func (c *QueryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Entries = len(c.entries)
	s.InFlight = len(c.inflight)
	return s
}

// Cached pairs a Result with its typed payload.
type Cached[T any] struct {
	Result
	Value T
}

// Load is the typed form of QueryCache.Load.
func Load[T any](ctx context.Context, l Loader, key Key, fetch func(ctx context.Context) (T, error)) Cached[T] {
	res := l.Load(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	return typed[T](res)
}

// Peek is the typed form of QueryCache.Peek.
func Peek[T any](l Loader, key Key) Cached[T] {
	return typed[T](l.Peek(key))
}

func typed[T any](res Result) Cached[T] {
	out := Cached[T]{Result: res}
	if v, ok := res.Data.(T); ok {
		out.Value = v
	}
	return out
}

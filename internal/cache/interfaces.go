package cache

import (
	"context"
	"time"
)

// Fetcher loads one list page from the gateway.
type Fetcher func(ctx context.Context) (any, error)

// Loader is the cache API needed by list handlers.
type Loader interface {
	Load(ctx context.Context, key Key, fetch Fetcher) Result
	Peek(key Key) Result
}

// Invalidator is the cache API needed by modal flows after a mutation.
type Invalidator interface {
	Invalidate(resource Resource) int
}

// Browser lists what is cached for a resource, e.g. for cross-list hints.
type Browser interface {
	Snapshot(resource Resource) []any
}

// Sweeper is the cache API needed by the janitor.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// QueryStore is the cache contract the application container exposes.
type QueryStore interface {
	Loader
	Invalidator
	Sweeper
	Browser
	Stats() Stats
}

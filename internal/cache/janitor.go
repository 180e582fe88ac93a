package cache

import (
	"context"
	"time"

	"github.com/bassista/room_desk/internal/logger"
)

// StartJanitor runs a goroutine that periodically evicts idle entries.
// On ctx.Done, it performs a final sweep before returning.
// Returns a channel that is closed when the janitor has completed shutdown.
func StartJanitor(ctx context.Context, store Sweeper, interval, idle time.Duration) <-chan struct{} {
	done := make(chan struct{})
	logger.WithComponent("janitor").Debugf("starting cache janitor with interval: %v, idle ttl: %v", interval, idle)
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				sweep(store, idle)
				logger.WithComponent("janitor").Info("cache janitor stopped after final sweep")
				return
			case <-ticker.C:
				sweep(store, idle)
			}
		}
	}()
	return done
}

func sweep(store Sweeper, idle time.Duration) {
	if n := store.Sweep(idle); n > 0 {
		logger.WithComponent("janitor").Debugf("evicted %d idle cache entries", n)
		return
	}
	logger.WithComponent("janitor").Tracef("no idle cache entries")
}

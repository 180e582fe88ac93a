package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	calls int32
}

func (s *countingSweeper) Sweep(idle time.Duration) int {
	atomic.AddInt32(&s.calls, 1)
	return 1
}

func TestStartJanitor_TicksAndFinalSweep(t *testing.T) {
	s := &countingSweeper{}
	ctx, cancel := context.WithCancel(context.Background())

	done := StartJanitor(ctx, s, 10*time.Millisecond, time.Minute)
	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}

	if got := atomic.LoadInt32(&s.calls); got < 2 {
		t.Errorf("expected at least 2 sweeps (ticks + final), got %d", got)
	}
}

func TestStartJanitor_FinalSweepOnImmediateCancel(t *testing.T) {
	s := &countingSweeper{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	<-StartJanitor(ctx, s, time.Hour, time.Minute)

	if got := atomic.LoadInt32(&s.calls); got != 1 {
		t.Errorf("expected exactly one final sweep, got %d", got)
	}
}

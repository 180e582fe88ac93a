package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/bassista/room_desk/internal/logger"
)

type memoryEntry struct {
	payload    []byte
	lastAccess time.Time
}

// MemoryStore keeps sessions in process. Entries are stored serialised so
// callers never share state with the store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) expired(e *memoryEntry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastAccess) > s.ttl
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[id]
	if !ok || s.expired(e, now) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	e.lastAccess = now

	var data Data
	if err := json.Unmarshal(e.payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *MemoryStore) Save(ctx context.Context, id string, data *Data) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &memoryEntry{payload: payload, lastAccess: s.now()}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Sweep drops expired sessions and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dropped := 0
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
			dropped++
		}
	}
	return dropped
}

// StartSweeper periodically drops expired sessions until ctx is done.
// Returns a channel that is closed when the sweeper has stopped.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.WithComponent("session").Debug("session sweeper stopped")
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					logger.WithComponent("session").Debugf("dropped %d expired sessions", n)
				}
			}
		}
	}()
	return done
}

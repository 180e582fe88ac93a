package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

type refLock struct {
	sync.Mutex
	refs int
}

// Manager serialises read-modify-write cycles on one session id within this
// process and hands out session ids.
type Manager struct {
	store Store

	mu    sync.Mutex
	locks map[string]*refLock
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, locks: make(map[string]*refLock)}
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an id issued by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &refLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		m.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}

func (m *Manager) load(ctx context.Context, id string) (*Data, error) {
	data, err := m.store.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return &Data{}, nil
	}
	return data, err
}

// Get returns the session's data; unknown ids read as a fresh session.
func (m *Manager) Get(ctx context.Context, id string) (*Data, error) {
	return m.load(ctx, id)
}

// Update loads the session, applies fn and saves the result under the
// session lock. The data is saved even when fn returns an error, so rejected
// submits keep their field errors; fn's error is returned.
func (m *Manager) Update(ctx context.Context, id string, fn func(d *Data) error) error {
	unlock := m.lock(id)
	defer unlock()

	data, err := m.load(ctx, id)
	if err != nil {
		return err
	}
	fnErr := fn(data)
	if err := m.store.Save(ctx, id, data); err != nil {
		return err
	}
	return fnErr
}

// Delete forgets the session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	unlock := m.lock(id)
	defer unlock()
	return m.store.Delete(ctx, id)
}

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bassista/room_desk/internal/config"
	"github.com/bassista/room_desk/internal/form"
	"github.com/bassista/room_desk/internal/modal"
	"github.com/bassista/room_desk/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRedisAddr = "localhost:6379"

func sampleData() *Data {
	d := &Data{}
	d.Rooms.State = modal.Edit(repository.Room{ID: 3, Name: "Aurora"})
	d.Rooms.Values = form.Values{"name": "Aurora", "capacity": 8}
	d.Rooms.Seq = 2
	return d
}

func TestMemoryStore_SaveLoadDelete(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "a", sampleData()))
	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, modal.KindEdit, got.Rooms.State.Kind())
	assert.Equal(t, float64(8), got.Rooms.Values["capacity"])

	got.Rooms.Seq = 99
	again, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), again.Rooms.Seq, "loaded data must not alias the store")

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "old", sampleData()))
	now = now.Add(50 * time.Second)
	require.NoError(t, s.Save(ctx, "new", sampleData()))
	now = now.Add(20 * time.Second)

	assert.Equal(t, 1, s.Sweep())
	_, err := s.Load(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Load(ctx, "new")
	assert.NoError(t, err)
}

func TestMemoryStore_StartSweeper(t *testing.T) {
	s := NewMemoryStore(time.Millisecond)
	require.NoError(t, s.Save(context.Background(), "a", sampleData()))

	ctx, cancel := context.WithCancel(context.Background())
	done := s.StartSweeper(ctx, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.entries) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestManager_UpdateCreatesAndPersists(t *testing.T) {
	m := NewManager(NewMemoryStore(time.Hour))
	ctx := context.Background()
	id := NewID()
	assert.True(t, ValidID(id))
	assert.False(t, ValidID("not-a-uuid"))

	err := m.Update(ctx, id, func(d *Data) error {
		d.Bookings.MutationError = "failed"
		return nil
	})
	require.NoError(t, err)

	d, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "failed", d.Bookings.MutationError)

	fresh, err := m.Get(ctx, NewID())
	require.NoError(t, err)
	assert.Equal(t, modal.KindClosed, fresh.Rooms.State.Kind())
}

func TestManager_UpdateSavesEvenWhenFnFails(t *testing.T) {
	m := NewManager(NewMemoryStore(time.Hour))
	ctx := context.Background()
	boom := errors.New("field errors")

	err := m.Update(ctx, "s1", func(d *Data) error {
		d.Rooms.Errors = form.Errors{"name": "too short"}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	d, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "too short", d.Rooms.Errors["name"])
}

func TestManager_UpdateIsSerialisedPerSession(t *testing.T) {
	m := NewManager(NewMemoryStore(time.Hour))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Update(ctx, "shared", func(d *Data) error {
				d.Rooms.Seq++
				return nil
			})
		}()
	}
	wg.Wait()

	d, err := m.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, uint64(50), d.Rooms.Seq)

	m.mu.Lock()
	assert.Empty(t, m.locks, "locks must be released")
	m.mu.Unlock()
}

func TestNewStoreFromConfig(t *testing.T) {
	s, err := NewStoreFromConfig(config.SessionConfig{Store: config.SessionStoreMemory, TTL: time.Hour})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStoreFromConfig(config.SessionConfig{Store: config.SessionStoreRedis, RedisAddr: testRedisAddr, TTL: time.Hour})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	_ = s.(*RedisStore).Close()

	_, err = NewStoreFromConfig(config.SessionConfig{Store: "cookie"})
	assert.Error(t, err)
}

// setupRedisStore requires Redis running on localhost:6379.
func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	store := NewRedisStore(client, "room_desk:test:"+NewID()+":", time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisStore_SaveLoadDelete(t *testing.T) {
	s := setupRedisStore(t)
	ctx := context.Background()

	_, err := s.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "a", sampleData()))
	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, modal.KindEdit, got.Rooms.State.Kind())

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

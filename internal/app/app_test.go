package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bassista/room_desk/internal/cache"
	"github.com/bassista/room_desk/internal/config"
	"github.com/bassista/room_desk/internal/form"
	"github.com/bassista/room_desk/internal/repository"
	"github.com/bassista/room_desk/internal/session"
)

// mockGateway implements repository.Gateway without a backend.
type mockGateway struct {
	repository.Gateway
}

func (m *mockGateway) ListRooms(ctx context.Context, page, limit int) (repository.Page[repository.Room], error) {
	return repository.Page[repository.Room]{Items: []repository.Room{{ID: 1, Name: "Aurora", Capacity: 8}}, TotalCount: 1}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Cache:   config.CacheConfig{IdleTTL: time.Minute, JanitorInterval: 10 * time.Millisecond},
		Session: config.SessionConfig{TTL: time.Hour, SweepInterval: 10 * time.Millisecond},
		Forms:   config.FormsConfig{RoomOptionsLimit: 50},
	}
}

func TestNew_Success(t *testing.T) {
	cfg := testConfig()
	app, err := New(cfg, &mockGateway{}, cache.NewQueryCache(0), session.NewMemoryStore(time.Hour))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if app.Config != cfg {
		t.Error("config not set correctly")
	}
	if app.Sessions == nil || app.Forms == nil {
		t.Error("sessions and forms should be built")
	}
	if app.RoomFlow == nil || app.RoomFlow.DeleteWarn == nil {
		t.Error("room flow should carry the delete warning")
	}
	if app.BookingFlow == nil || app.BookingFlow.Warn == nil {
		t.Error("booking flow should carry the capacity warning")
	}
	if app.BaseCtx == nil || app.Cancel == nil {
		t.Error("lifecycle context should be set")
	}
}

func TestNew_NilDependencies(t *testing.T) {
	gw := &mockGateway{}
	qc := cache.NewQueryCache(0)
	store := session.NewMemoryStore(time.Hour)

	tests := []struct {
		name  string
		cfg   *config.Config
		gw    repository.Gateway
		qc    cache.QueryStore
		store session.Store
		want  string
	}{
		{"nil config", nil, gw, qc, store, "config is nil"},
		{"nil gateway", testConfig(), nil, qc, store, "gateway is nil"},
		{"nil cache", testConfig(), gw, nil, store, "query cache is nil"},
		{"nil session store", testConfig(), gw, qc, nil, "session store is nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := New(tt.cfg, tt.gw, tt.qc, tt.store)
			if err == nil || err.Error() != tt.want {
				t.Errorf("expected error %q, got %v", tt.want, err)
			}
			if app != nil {
				t.Error("expected nil app on error")
			}
		})
	}
}

func TestApp_BookingWarningsReadCachedRooms(t *testing.T) {
	qc := cache.NewQueryCache(0)
	app, err := New(testConfig(), &mockGateway{}, qc, session.NewMemoryStore(time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	cache.Load(context.Background(), qc, cache.Key{Resource: cache.ResourceRooms, Page: 1, Limit: 50},
		func(ctx context.Context) (repository.Page[repository.Room], error) {
			return app.Gateway.ListRooms(ctx, 1, 50)
		})

	w := app.BookingFlow.Warn(form.Values{"room_id": 1, "attendees": 20})
	if w["attendees"] == "" {
		t.Errorf("expected a capacity warning, got %v", w)
	}
}

func TestApp_StartWatchersAndShutdown(t *testing.T) {
	app, err := New(testConfig(), &mockGateway{}, cache.NewQueryCache(0), session.NewMemoryStore(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if err := app.StartWatchers(); err != nil {
		t.Fatalf("start watchers: %v", err)
	}
	if len(app.background) != 2 {
		t.Fatalf("expected janitor and session sweeper, got %d goroutines", len(app.background))
	}

	finished := make(chan struct{})
	go func() {
		app.Shutdown()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("shutdown should wait for background goroutines and return")
	}

	select {
	case <-app.BaseCtx.Done():
	default:
		t.Error("context should be done after shutdown")
	}
}

func TestApp_FileWatcherInvalidatesCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backend.json")
	repo, err := repository.NewJSONRepository(path)
	if err != nil {
		t.Fatal(err)
	}
	qc := cache.NewQueryCache(0)
	app, err := New(testConfig(), repo, qc, session.NewMemoryStore(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	defer app.Shutdown()
	if err := app.StartWatchers(); err != nil {
		t.Fatalf("start watchers: %v", err)
	}

	cache.Load(context.Background(), qc, cache.Key{Resource: cache.ResourceRooms, Page: 1, Limit: 10},
		func(ctx context.Context) (repository.Page[repository.Room], error) {
			return repo.ListRooms(ctx, 1, 10)
		})
	if qc.Stats().Entries != 1 {
		t.Fatalf("expected one cached page")
	}

	app.onDataChanged()
	if qc.Stats().Entries != 0 {
		t.Error("data change should drop cached pages")
	}
}

func TestApp_Shutdown_Nil(t *testing.T) {
	var app *App
	app.Shutdown()
}

func TestApp_Shutdown_NilCancel(t *testing.T) {
	app := &App{
		Cancel: nil,
	}
	app.Shutdown()
}

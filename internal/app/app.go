package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bassista/room_desk/internal/cache"
	"github.com/bassista/room_desk/internal/config"
	"github.com/bassista/room_desk/internal/form"
	"github.com/bassista/room_desk/internal/logger"
	"github.com/bassista/room_desk/internal/modal"
	"github.com/bassista/room_desk/internal/repository"
	"github.com/bassista/room_desk/internal/session"
	"github.com/bassista/room_desk/internal/view"
)

// sweepingStore is implemented by session stores that expire entries themselves.
type sweepingStore interface {
	StartSweeper(ctx context.Context, interval time.Duration) <-chan struct{}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// App is the application container (immutable dependencies + lifecycle context).
// It is not a request context; handlers should still use gin's request context.
type App struct {
	Config   *config.Config
	Gateway  repository.Gateway
	Cache    cache.QueryStore
	Store    session.Store
	Sessions *session.Manager
	Forms    *form.Engine

	RoomFlow    *modal.RoomFlow
	BookingFlow *modal.BookingFlow

	BaseCtx context.Context
	Cancel  context.CancelFunc

	background []<-chan struct{}
}

func New(cfg *config.Config, gw repository.Gateway, qc cache.QueryStore, store session.Store) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if gw == nil {
		return nil, errors.New("gateway is nil")
	}
	if qc == nil {
		return nil, errors.New("query cache is nil")
	}
	if store == nil {
		return nil, errors.New("session store is nil")
	}

	engine := form.NewEngine(form.Options{RequireCoffeeDescription: cfg.Forms.RequireCoffeeDescription})

	roomFlow := modal.NewRoomFlow(engine, gw, qc)
	roomFlow.DeleteWarn = view.RoomDeleteWarner(qc)

	bookingFlow := modal.NewBookingFlow(engine, gw, qc)
	bookingFlow.Warn = view.CapacityWarner(engine, qc, cfg.Forms.RoomOptionsLimit)

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Config:      cfg,
		Gateway:     gw,
		Cache:       qc,
		Store:       store,
		Sessions:    session.NewManager(store),
		Forms:       engine,
		RoomFlow:    roomFlow,
		BookingFlow: bookingFlow,
		BaseCtx:     ctx,
		Cancel:      cancel,
	}, nil
}

// Shutdown stops the background goroutines, waits for their final pass and
// closes the session store when it holds a connection.
func (a *App) Shutdown() {
	if a == nil || a.Cancel == nil {
		return
	}
	a.Cancel()
	for _, done := range a.background {
		<-done
	}
	if closer, ok := a.Store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.WithComponent("app").Warnf("close session store: %v", err)
		}
	}
}

// StartWatchers starts the cache janitor, the session sweeper of the memory
// store and, for the file backend, the data file watcher.
func (a *App) StartWatchers() error {
	a.background = append(a.background,
		cache.StartJanitor(a.BaseCtx, a.Cache, a.Config.Cache.JanitorInterval, a.Config.Cache.IdleTTL))

	if s, ok := a.Store.(sweepingStore); ok {
		a.background = append(a.background, s.StartSweeper(a.BaseCtx, a.Config.Session.SweepInterval))
	}

	if p, ok := a.Store.(pinger); ok {
		ctx, cancel := context.WithTimeout(a.BaseCtx, 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			logger.WithComponent("app").Warnf("session store is not reachable yet: %v", err)
		}
	}

	if w, ok := a.Gateway.(repository.Watcher); ok {
		if err := w.StartWatcher(a.BaseCtx, a.onDataChanged); err != nil {
			return fmt.Errorf("cannot start data file watcher: %w", err)
		}
	}
	return nil
}

// onDataChanged drops every cached page after an out-of-process edit.
func (a *App) onDataChanged() {
	rooms := a.Cache.Invalidate(cache.ResourceRooms)
	bookings := a.Cache.Invalidate(cache.ResourceBookings)
	logger.WithComponent("app").Infof("data file changed, dropped %d room and %d booking pages", rooms, bookings)
}

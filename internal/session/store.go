package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/bassista/room_desk/internal/config"
	"github.com/bassista/room_desk/internal/modal"
	"github.com/bassista/room_desk/internal/repository"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

// Data is everything the server keeps for one browser session.
type Data struct {
	Rooms    modal.Session[repository.Room]    `json:"rooms"`
	Bookings modal.Session[repository.Booking] `json:"bookings"`
}

// Store persists session data by id.
type Store interface {
	Load(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data) error
	Delete(ctx context.Context, id string) error
}

// NewStoreFromConfig builds the store selected by session.store.
func NewStoreFromConfig(cfg config.SessionConfig) (Store, error) {
	switch cfg.Store {
	case config.SessionStoreMemory:
		return NewMemoryStore(cfg.TTL), nil
	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedisStore(client, cfg.KeyPrefix, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session store: %s", cfg.Store)
	}
}

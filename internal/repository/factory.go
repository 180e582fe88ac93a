package repository

import (
	"context"
	"fmt"

	"github.com/bassista/room_desk/internal/config"
)

// Watcher is implemented by gateways that can notice out-of-process changes.
type Watcher interface {
	StartWatcher(ctx context.Context, onChange func()) error
}

// NewGatewayFromConfig builds the gateway selected by backend.type.
func NewGatewayFromConfig(cfg config.BackendConfig) (Gateway, error) {
	switch cfg.Type {
	case config.BackendTypeHTTP:
		return NewHTTPRepository(cfg.BaseURL, cfg.Timeout)
	case config.BackendTypeFile:
		return NewJSONRepository(cfg.DataFilePath)
	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Type)
	}
}

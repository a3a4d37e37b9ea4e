package store

import (
	"context"
	"fmt"

	"github.com/couchcryptid/nws-warnings/internal/config"
)

// Open returns the store selected by STATE_STORE.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StateStore {
	case config.StoreMemory:
		return NewMemory(), nil
	case config.StoreSQLite:
		return OpenSQLite(cfg.StateDBPath)
	case config.StoreRedis:
		return OpenRedis(ctx, cfg.RedisURL, cfg.StateTTL)
	default:
		return nil, fmt.Errorf("unknown state store %q", cfg.StateStore)
	}
}

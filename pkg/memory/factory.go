package memory

import (
	"context"
	"fmt"
)

// Provider names accepted by Open
const (
	ProviderMemory = "memory"
	ProviderSQLite = "sqlite"
	ProviderRedis  = "redis"
)

// Options selects and configures a Store backend
type Options struct {
	Provider   string
	SQLitePath string
	RedisURL   string
	Namespace  string
}

// Open builds the Store named by opts.Provider
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Provider {
	case ProviderMemory, "":
		return NewInMemoryStore(), nil
	case ProviderSQLite:
		return NewSQLiteStore(ctx, opts.SQLitePath)
	case ProviderRedis:
		return NewRedisStore(opts.RedisURL, opts.Namespace)
	default:
		return nil, fmt.Errorf("unknown store provider %q", opts.Provider)
	}
}

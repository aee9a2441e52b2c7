// Package memory provides the key-value storage behind the client session.
//
// The ordering client keeps exactly two pieces of durable state, the bearer
// token and the signed-in user profile. Where they live is a deployment choice,
// so the session layer talks to the Store interface and one of three backends is
// chosen at startup.
//
// # Store Interface
//
//	type Store interface {
//	    Set(ctx context.Context, key, value string, ttl time.Duration) error
//	    Get(ctx context.Context, key string) (string, error)
//	    Delete(ctx context.Context, key string) error
//	    Exists(ctx context.Context, key string) (bool, error)
//	    Close() error
//	}
//
// A ttl of zero keeps the entry until it is deleted. Get wraps ErrNotFound for
// missing or expired keys, so callers test with errors.Is.
//
// # Backend Implementations
//
// SQLite Backend (default for the CLI):
//   - Single file, created on first use
//   - Survives process restarts
//   - Pure Go driver (modernc.org/sqlite), no cgo
//
// Redis Backend (shared):
//   - Keys are namespaced as "<namespace>:<key>"
//   - Native TTL support
//   - Useful when several client processes share one login
//
// In-Memory Backend (tests, throwaway runs):
//   - Map guarded by a mutex
//   - Lazy expiry on read
//
// # Selecting a Backend
//
//	store, err := memory.Open(ctx, memory.Options{
//	    Provider:   memory.ProviderSQLite,
//	    SQLitePath: filepath.Join(home, ".campusbite", "session.db"),
//	})
package memory

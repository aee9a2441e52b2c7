package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore implements Store using Redis
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisStore connects to redisURL and namespaces every key
func NewRedisStore(redisURL, namespace string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if namespace == "" {
		namespace = "campusbite"
	}

	return &RedisStore{
		client:    client,
		namespace: namespace,
	}, nil
}

// Set stores a value. A zero ttl keeps the key until it is deleted.
func (r *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.buildKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// Get retrieves a value by key
func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	data, err := r.client.Get(ctx, r.buildKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return "", fmt.Errorf("failed to get key: %w", err)
	}
	return data, nil
}

// Delete removes a key
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.buildKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// Exists checks if a key exists
func (r *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	result, err := r.client.Exists(ctx, r.buildKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key existence: %w", err)
	}
	return result > 0, nil
}

// buildKey creates a namespaced key
func (r *RedisStore) buildKey(key string) string {
	return fmt.Sprintf("%s:%s", r.namespace, key)
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// InMemoryStore keeps values in process memory. Nothing survives a restart.
type InMemoryStore struct {
	data map[string]valueWithExpiry
	mu   sync.RWMutex
}

type valueWithExpiry struct {
	value  string
	expiry time.Time
}

func (v valueWithExpiry) expired(now time.Time) bool {
	return !v.expiry.IsZero() && now.After(v.expiry)
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		data: make(map[string]valueWithExpiry),
	}
}

// Set stores a key-value pair with TTL
func (m *InMemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := valueWithExpiry{value: value}
	if ttl > 0 {
		entry.expiry = time.Now().Add(ttl)
	}
	m.data[key] = entry
	return nil
}

// Get retrieves a value by key
func (m *InMemoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.data[key]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if entry.expired(time.Now()) {
		delete(m.data, key)
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return entry.value, nil
}

// Delete removes a key
func (m *InMemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Exists checks if a key exists
func (m *InMemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.data[key]
	if !exists {
		return false, nil
	}
	if entry.expired(time.Now()) {
		delete(m.data, key)
		return false, nil
	}
	return true, nil
}

// Close is a no-op
func (m *InMemoryStore) Close() error {
	return nil
}

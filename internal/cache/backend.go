// Package cache holds the key/value backends shared by the collection cache,
// the admin-check cache, token revocation and rate limiting.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Backend stores opaque values with a TTL.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Versioned tracks a generation number per key so a writer can refuse to
// store a value computed before the key was last bumped.
type Versioned interface {
	Version(ctx context.Context, key string) (int64, error)
	Bump(ctx context.Context, keys ...string) error
	// SetIfVersion stores value under key only while the generation of
	// versionKey still equals version. It reports whether the write happened.
	SetIfVersion(ctx context.Context, key string, value []byte, ttl time.Duration, versionKey string, version int64) (bool, error)
}

// VersionedBackend is a Backend that supports generation checks.
type VersionedBackend interface {
	Backend
	Versioned
}

// Counter increments a key that expires window after its first increment.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisBackend implements Backend and Counter on Redis. All keys are prefixed.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend creates a Redis backend. prefix namespaces keys, e.g. "ejoheza:".
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return v, err
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, b.prefix+key, value, ttl).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = b.prefix + k
	}
	return b.client.Del(ctx, full...).Err()
}

func (b *RedisBackend) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := b.prefix + key
	pipe := b.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (b *RedisBackend) Version(ctx context.Context, key string) (int64, error) {
	v, err := b.client.Get(ctx, b.prefix+key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (b *RedisBackend) Bump(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	pipe := b.client.TxPipeline()
	for _, k := range keys {
		pipe.Incr(ctx, b.prefix+k)
	}
	_, err := pipe.Exec(ctx)
	return err
}

var errVersionChanged = errors.New("version changed")

// SetIfVersion watches versionKey so a concurrent Bump aborts the write.
func (b *RedisBackend) SetIfVersion(ctx context.Context, key string, value []byte, ttl time.Duration, versionKey string, version int64) (bool, error) {
	vk := b.prefix + versionKey
	err := b.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, vk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != version {
			return errVersionChanged
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, b.prefix+key, value, ttl)
			return nil
		})
		return err
	}, vk)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errVersionChanged), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, err
	}
}

type memItem struct {
	value   []byte
	count   int64
	expires time.Time
}

// MemoryBackend is a process-local Backend and Counter used when Redis is disabled.
// Expired entries are dropped on read and by a periodic sweep on write.
type MemoryBackend struct {
	mu        sync.Mutex
	items     map[string]memItem
	versions  map[string]int64
	lastSweep time.Time
	now       func() time.Time
}

const sweepInterval = time.Minute

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		items:    make(map[string]memItem),
		versions: make(map[string]int64),
		now:      time.Now,
	}
}

// sweep removes expired entries at most once per sweepInterval. Callers hold mu.
func (m *MemoryBackend) sweep() {
	now := m.now()
	if now.Sub(m.lastSweep) < sweepInterval {
		return
	}
	m.lastSweep = now
	for k, it := range m.items {
		if !it.expires.IsZero() && !now.Before(it.expires) {
			delete(m.items, k)
		}
	}
}

func (m *MemoryBackend) live(key string) (memItem, bool) {
	it, ok := m.items[key]
	if !ok {
		return memItem{}, false
	}
	if !it.expires.IsZero() && !m.now().Before(it.expires) {
		delete(m.items, key)
		return memItem{}, false
	}
	return it, true
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.live(key)
	if !ok || it.value == nil {
		return nil, ErrMiss
	}
	out := make([]byte, len(it.value))
	copy(out, it.value)
	return out, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.store(key, value, ttl)
	return nil
}

func (m *MemoryBackend) store(key string, value []byte, ttl time.Duration) {
	it := memItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		it.expires = m.now().Add(ttl)
	}
	m.items[key] = it
}

func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *MemoryBackend) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	it, ok := m.live(key)
	if !ok {
		it = memItem{expires: m.now().Add(window)}
	}
	it.count++
	m.items[key] = it
	return it.count, nil
}

func (m *MemoryBackend) Version(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[key], nil
}

func (m *MemoryBackend) Bump(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		m.versions[k]++
	}
	return nil
}

func (m *MemoryBackend) SetIfVersion(_ context.Context, key string, value []byte, ttl time.Duration, versionKey string, version int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.versions[versionKey] != version {
		return false, nil
	}
	m.sweep()
	m.store(key, value, ttl)
	return true, nil
}

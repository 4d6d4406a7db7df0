package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Query ids of the cached admin collections.
const (
	KeyVolunteers = "volunteers"
	KeyDonations  = "donations"
	KeyEvents     = "events"
	KeyNewsPosts  = "news-posts"
)

const (
	collectionPrefix = "collection:"
	versionPrefix    = "collection-version:"
)

// Collections caches whole fetched collections by query id. Mutations call
// Invalidate so the next Load refetches. A fetch that overlaps an Invalidate
// is returned to its caller but never stored.
type Collections struct {
	backend VersionedBackend
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCollections creates a collection cache over backend.
func NewCollections(backend VersionedBackend, ttl time.Duration, logger *zap.Logger) *Collections {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collections{backend: backend, ttl: ttl, logger: logger}
}

// Load returns the collection stored under key, calling fetch on a miss.
// Backend failures degrade to a direct fetch.
func Load[T any](ctx context.Context, c *Collections, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	raw, err := c.backend.Get(ctx, collectionPrefix+key)
	if err == nil {
		var items []T
		if jsonErr := json.Unmarshal(raw, &items); jsonErr == nil {
			return items, nil
		}
		c.logger.Warn("discarding unreadable cached collection", zap.String("key", key))
	} else if !errors.Is(err, ErrMiss) {
		c.logger.Warn("collection cache read failed", zap.String("key", key), zap.Error(err))
	}

	version, verErr := c.backend.Version(ctx, versionPrefix+key)
	if verErr != nil {
		c.logger.Warn("collection cache version read failed", zap.String("key", key), zap.Error(verErr))
	}

	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	if verErr != nil {
		return items, nil
	}
	if raw, err := json.Marshal(items); err == nil {
		stored, err := c.backend.SetIfVersion(ctx, collectionPrefix+key, raw, c.ttl, versionPrefix+key, version)
		switch {
		case err != nil:
			c.logger.Warn("collection cache write failed", zap.String("key", key), zap.Error(err))
		case !stored:
			c.logger.Debug("collection changed during fetch, not caching", zap.String("key", key))
		}
	}
	return items, nil
}

// Invalidate drops the cached collections so the next Load refetches.
func (c *Collections) Invalidate(ctx context.Context, keys ...string) {
	versions := make([]string, len(keys))
	full := make([]string, len(keys))
	for i, k := range keys {
		versions[i] = versionPrefix + k
		full[i] = collectionPrefix + k
	}
	if err := c.backend.Bump(ctx, versions...); err != nil {
		c.logger.Error("collection cache version bump failed", zap.Strings("keys", keys), zap.Error(err))
	}
	if err := c.backend.Delete(ctx, full...); err != nil {
		c.logger.Error("collection cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

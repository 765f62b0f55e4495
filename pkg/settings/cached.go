package settings

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/dmitrymomot/forumauth/pkg/cache"
)

const snapshotKey = "settings:snapshot"

// DefaultCacheTTL bounds how stale a snapshot can be when another process
// writes the underlying store.
const DefaultCacheTTL = time.Minute

// CachedOption configures a CachedStore.
type CachedOption func(*CachedStore)

// WithoutSecrets keeps credentials (see IsSecret) out of the cached snapshot.
// They are read from the underlying store on every call instead. Use it when
// the cache is shared, e.g. cache.Redis, which stores values as plain JSON.
func WithoutSecrets() CachedOption {
	return func(s *CachedStore) { s.excludeSecrets = true }
}

// CachedStore serves reads from a cached snapshot of the whole option set.
// Concurrent misses load the snapshot once.
type CachedStore struct {
	store          Store
	loader         *cache.Loader[map[string]string]
	ttl            time.Duration
	excludeSecrets bool
}

// NewCachedStore wraps store. A ttl <= 0 uses DefaultCacheTTL.
func NewCachedStore(store Store, c cache.Cache[map[string]string], ttl time.Duration, opts ...CachedOption) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	s := &CachedStore{store: store, loader: cache.NewLoader(c), ttl: ttl}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CachedStore) Get(ctx context.Context, key string) (string, error) {
	if s.excludeSecrets && IsSecret(key) {
		return s.store.Get(ctx, key)
	}

	values, err := s.snapshot(ctx)
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *CachedStore) All(ctx context.Context) (map[string]string, error) {
	values, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	values = maps.Clone(values)
	if !s.excludeSecrets {
		return values, nil
	}

	for _, key := range secretKeys {
		v, err := s.store.Get(ctx, key)
		switch {
		case err == nil:
			values[key] = v
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
	}
	return values, nil
}

// Set writes through and drops the snapshot.
func (s *CachedStore) Set(ctx context.Context, key, value string) error {
	if err := s.store.Set(ctx, key, value); err != nil {
		return err
	}
	return s.loader.Cache().Delete(ctx, snapshotKey)
}

func (s *CachedStore) snapshot(ctx context.Context) (map[string]string, error) {
	return s.loader.GetOrSet(ctx, snapshotKey, func(ctx context.Context) (map[string]string, time.Duration, error) {
		values, err := s.store.All(ctx)
		if err != nil {
			return nil, 0, err
		}
		if s.excludeSecrets {
			maps.DeleteFunc(values, func(k, _ string) bool { return IsSecret(k) })
		}
		return values, s.ttl, nil
	})
}

var _ Store = (*CachedStore)(nil)

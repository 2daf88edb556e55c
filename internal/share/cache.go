package share

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultCachePrefix namespaces cached snapshots.
const DefaultCachePrefix = "share:"

// CachedStore fronts a Store with a Redis read-through cache. Snapshots are
// immutable, so entries are only ever written once and expire by TTL.
type CachedStore struct {
	Store  Store
	Client redis.UniversalClient
	TTL    time.Duration
	Prefix string
}

func (c CachedStore) key(id string) string {
	prefix := c.Prefix
	if prefix == "" {
		prefix = DefaultCachePrefix
	}
	return prefix + id
}

// Exists always consults the backing store so id allocation sees live data.
func (c CachedStore) Exists(ctx context.Context, id string) (bool, error) {
	return c.Store.Exists(ctx, id)
}

// InsertIfAbsent writes through to the backing store and primes the cache on success.
func (c CachedStore) InsertIfAbsent(ctx context.Context, snap Snapshot) (bool, error) {
	ok, err := c.Store.InsertIfAbsent(ctx, snap)
	if err != nil || !ok {
		return ok, err
	}
	c.setJSON(ctx, snap)
	return true, nil
}

// Get serves from the cache when possible. Cache failures fall back to the store.
func (c CachedStore) Get(ctx context.Context, id string) (Snapshot, bool, error) {
	if snap, ok := c.getJSON(ctx, id); ok {
		return snap, true, nil
	}
	snap, found, err := c.Store.Get(ctx, id)
	if err != nil || !found {
		return snap, found, err
	}
	c.setJSON(ctx, snap)
	return snap, true, nil
}

func (c CachedStore) getJSON(ctx context.Context, id string) (Snapshot, bool) {
	if c.Client == nil {
		return Snapshot{}, false
	}
	data, err := c.Client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("share_id", id).Msg("share_cache_get_failed")
		}
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false
	}
	return snap, true
}

func (c CachedStore) setJSON(ctx context.Context, snap Snapshot) {
	if c.Client == nil || c.TTL <= 0 {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, c.key(snap.ID), data, c.TTL).Err(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("share_id", snap.ID).Msg("share_cache_set_failed")
	}
}

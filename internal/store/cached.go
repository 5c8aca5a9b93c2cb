package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

// CachedStore is a read-through cache in front of another store.
// Writes go to the inner store and evict the cached key.
type CachedStore struct {
	inner      RecordStore
	cache      *freecache.Cache
	ttlSeconds int
}

func NewCachedStore(inner RecordStore, sizeMB int, ttl time.Duration) *CachedStore {
	megabyte := 1024 * 1024
	if sizeMB <= 0 {
		sizeMB = 16
	}
	ttlSeconds := int(ttl.Seconds())
	if ttlSeconds <= 0 {
		ttlSeconds = 30
	}
	return &CachedStore{
		inner:      inner,
		cache:      freecache.NewCache(sizeMB * megabyte),
		ttlSeconds: ttlSeconds,
	}
}

func (s *CachedStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	if cached, err := s.cache.Get([]byte(key)); err == nil {
		log.Tracef("store cache hit: %s", key)
		return cached, nil
	}

	value, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	// absent keys are not cached, they may be written by another process any moment
	if value == nil {
		return nil, nil
	}

	if err := s.cache.Set([]byte(key), value, s.ttlSeconds); err != nil {
		log.Debugf("store cache set [%s]: %s", key, err)
	}
	return value, nil
}

func (s *CachedStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := s.inner.Set(ctx, key, value); err != nil {
		return err
	}
	s.cache.Del([]byte(key))
	return nil
}

func (s *CachedStore) HitRate() float64 {
	return s.cache.HitRate()
}

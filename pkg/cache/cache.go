package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache stores rendered output keyed by a caller-chosen key.
//
// TTL semantics for Set:
//   - Positive duration: entry expires after this duration
//   - Zero: the store's default TTL
//   - Negative: entry never expires
type Cache[V any] interface {
	// Get returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Marshaler converts values for stores that keep bytes (Redis).
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// StringMarshaler stores strings as raw bytes, skipping the JSON round trip.
// Use it for markup caches backed by Redis.
type StringMarshaler struct{}

func (StringMarshaler) Marshal(v string) ([]byte, error)      { return []byte(v), nil }
func (StringMarshaler) Unmarshal(data []byte) (string, error) { return string(data), nil }

var fills singleflight.Group

// GetOrSet returns the cached value for key or computes it with fn.
// Concurrent misses for the same key share a single fn call.
// A failing fn is not cached.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, ttl time.Duration, fn func(ctx context.Context) (V, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err, _ := fills.Do(key, func() (any, error) {
		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		// Best effort: a store failure still returns the fresh value.
		_ = c.Set(ctx, key, val, ttl)
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	return v.(V), nil
}

//go:build integration

package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ssr/pkg/cache"
	"github.com/dmitrymomot/ssr/pkg/redis"
)

const testRedisURL = "redis://localhost:6379/0"

func newTestRedisClient(t *testing.T) goredis.UniversalClient {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = testRedisURL
	}

	ctx := context.Background()
	client, err := redis.Open(ctx, url)
	require.NoError(t, err, "failed to connect to Redis")

	t.Cleanup(func() {
		_ = client.FlushDB(ctx).Err()
		_ = client.Close()
	})

	return client
}

func TestRedis_Markup(t *testing.T) {
	t.Parallel()

	client := newTestRedisClient(t)
	c := cache.NewRedis[string](client, cache.StringMarshaler{}, cache.WithPrefix("test-markup"))
	ctx := context.Background()

	_, err := c.Get(ctx, "/home")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, c.Set(ctx, "/home", "<h1>home</h1>", time.Minute))

	val, err := c.Get(ctx, "/home")
	require.NoError(t, err)
	require.Equal(t, "<h1>home</h1>", val)

	raw, err := client.Get(ctx, "test-markup:/home").Result()
	require.NoError(t, err)
	require.Equal(t, "<h1>home</h1>", raw)

	require.NoError(t, c.Delete(ctx, "/home"))
	_, err = c.Get(ctx, "/home")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestRedis_JSONValues(t *testing.T) {
	t.Parallel()

	type page struct {
		HTML  string `json:"html"`
		Title string `json:"title"`
	}

	client := newTestRedisClient(t)
	c := cache.NewRedis[page](client, nil, cache.WithPrefix("test-json"))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "about", page{HTML: "<p/>", Title: "About"}, -1))

	got, err := c.Get(ctx, "about")
	require.NoError(t, err)
	require.Equal(t, "About", got.Title)

	ttl, err := client.TTL(ctx, "test-json:about").Result()
	require.NoError(t, err)
	require.Equal(t, time.Duration(-1), ttl)
}

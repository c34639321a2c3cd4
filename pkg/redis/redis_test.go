package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/trendday/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", TTLShort))

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t,
		"prices:usstock-1min:leveraged-etf:2024-01-02:2024-01-31:14:00:00,15:59:00:Open,Close",
		PriceTableKey("usstock-1min", "leveraged-etf", "2024-01-02", "2024-01-31",
			[]string{"14:00:00", "15:59:00"}, []string{"Open", "Close"}),
	)
	assert.Equal(t, "universe:leveraged-etf", UniverseKey("leveraged-etf"))
}

func TestCache_RoundTrip(t *testing.T) {
	if os.Getenv("REDIS_HOST") == "" {
		t.Skip("REDIS_HOST not set, skipping integration test")
	}

	client, err := New(&config.Config{Redis: config.RedisConfig{
		Host:    os.Getenv("REDIS_HOST"),
		Port:    "6379",
		Enabled: true,
	}})
	require.NoError(t, err)
	defer client.Close()

	cache := NewCache(client, "trendday-test")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "symbols", []string{"TQQQ", "SQQQ"}, time.Minute))

	var got []string
	found, err := cache.Get(ctx, "symbols", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"TQQQ", "SQQQ"}, got)

	require.NoError(t, cache.Delete(ctx, "symbols"))
}

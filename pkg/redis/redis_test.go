package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/jbp-analytics/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_LocalFallback(t *testing.T) {
	client, _ := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	limiter := NewRateLimiter(client, "test")
	cfg := RateLimitConfig{Key: "tenant:acme", Limit: 3, Window: time.Hour}

	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow(context.Background(), cfg)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, _, err := limiter.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, allowed, "burst exhausted")

	other := RateLimitConfig{Key: "tenant:globex", Limit: 3, Window: time.Hour}
	allowed, _, _ = limiter.Allow(context.Background(), other)
	assert.True(t, allowed, "tenants have separate budgets")
}

func TestTenantRateLimit(t *testing.T) {
	cfg := TenantRateLimit("acme", 60)
	assert.Equal(t, "tenant:acme", cfg.Key)
	assert.Equal(t, 60, cfg.Limit)
	assert.Equal(t, time.Minute, cfg.Window)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBookingConfigDefaults(t *testing.T) {
	t.Setenv("BOOKING_MAX_TICKETS_PER_PURCHASE", "")
	t.Setenv("BOOKING_REQUEST_TIMEOUT", "")

	c := LoadBookingConfig()
	assert.Equal(t, 6, c.MaxTicketsPerPurchase)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
}

func TestLoadBookingConfigOverrides(t *testing.T) {
	t.Setenv("BOOKING_MAX_TICKETS_PER_PURCHASE", "4")
	t.Setenv("BOOKING_REQUEST_TIMEOUT", "3s")

	c := LoadBookingConfig()
	assert.Equal(t, 4, c.MaxTicketsPerPurchase)
	assert.Equal(t, 3*time.Second, c.RequestTimeout)

	t.Setenv("BOOKING_MAX_TICKETS_PER_PURCHASE", "0")
	assert.Equal(t, 6, LoadBookingConfig().MaxTicketsPerPurchase)
}

func TestLoadQueueConfigURLFallback(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://user:pw@broker:5672/")
	t.Setenv("QUEUE_CONSUMER_ENABLED", "off")
	t.Setenv("QUEUE_DIAL_TIMEOUT", "")

	c := LoadQueueConfig()
	assert.Equal(t, 3*time.Second, c.DialTimeout)
	assert.True(t, c.Enabled)
	assert.False(t, c.ConsumerEnabled)
	assert.Equal(t, "amqp://user:pw@broker:5672/", c.URL)

	t.Setenv("RABBITMQ_URL", "amqp://primary/")
	assert.Equal(t, "amqp://primary/", LoadQueueConfig().URL)

	t.Setenv("QUEUE_DIAL_TIMEOUT", "500ms")
	assert.Equal(t, 500*time.Millisecond, LoadQueueConfig().DialTimeout)
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "20")
	t.Setenv("RATE_LIMIT_BOOKING_CAPACITY", "50")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "")

	c := LoadRateLimitConfig()
	assert.Equal(t, 20, c.Capacity)
	assert.Equal(t, 20, c.BookingCapacity)
	assert.Equal(t, 10*time.Second, c.TTL)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "0s")

	c := LoadCacheConfig()
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, c.Methods)
	assert.False(t, c.Enabled)
}

func TestRedisOptions(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_TLS", "")

	opts, err := RedisOptions()
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Nil(t, opts.TLSConfig)

	t.Setenv("REDIS_URL", "redis://:secret@other:6379/3")
	opts, err = RedisOptions()
	require.NoError(t, err)
	assert.Equal(t, "other:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)
}

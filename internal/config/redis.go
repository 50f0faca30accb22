package config

import (
	"context"
	"crypto/tls"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the client used for rate limiting and response
// caching.  REDIS_URL (redis:// or rediss://) takes precedence; otherwise
// REDIS_ADDR or REDIS_HOST/REDIS_PORT, REDIS_PASSWORD, REDIS_DB and
// REDIS_TLS are used.  It returns nil when the server does not answer a
// ping within two seconds; callers then run without Redis.
func NewRedisClient() *redis.Client {
	opts, err := RedisOptions()
	if err != nil {
		log.Printf("redis: %v; continuing without redis", err)
		return nil
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis: ping %s failed: %v; continuing without redis", opts.Addr, err)
		_ = client.Close()
		return nil
	}
	return client
}

// RedisOptions derives redis.Options from the environment.
func RedisOptions() (*redis.Options, error) {
	if url := envStr("REDIS_URL", ""); url != "" {
		return redis.ParseURL(url)
	}
	addr := envStr("REDIS_ADDR", "localhost:6379")
	if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
		addr = host + ":" + port
	}
	opts := &redis.Options{
		Addr:     addr,
		Password: envStr("REDIS_PASSWORD", ""),
		DB:       envInt("REDIS_DB", 0),
	}
	if v := envStr("REDIS_TLS", ""); strings.EqualFold(v, "true") || v == "1" {
		opts.TLSConfig = &tls.Config{ServerName: strings.Split(addr, ":")[0]}
	}
	return opts, nil
}

package config

// Redis backs two optional layers: the token bucket in front of the member
// endpoints and the response cache in front of the calendar reads.  Both
// are skipped when no client can be built.

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig locates the server.  URL (redis:// or rediss://) wins over
// Addr when both are set.
type RedisConfig struct {
	URL      string
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// RateLimitConfig shapes the token bucket: Capacity requests in a burst,
// then RefillTokens every RefillInterval.  Keys idle for TTL are dropped.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	PerRoute       bool   // one bucket per route instead of one per client
	Prefix         string
	Debug          bool
}

// CacheConfig controls the calendar response cache.  Only GET and HEAD
// responses are ever stored.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

func LoadRedisConfig() RedisConfig {
	rc := RedisConfig{
		URL:      envStr("REDIS_URL", ""),
		Addr:     envStr("REDIS_ADDR", "localhost:6379"),
		Password: envStr("REDIS_PASSWORD", ""),
		DB:       envInt("REDIS_DB", 0),
		TLS:      envBool("REDIS_TLS", false),
	}
	if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
		rc.Addr = host + ":" + port
	}
	return rc
}

// LoadRateLimitConfig defaults to a burst of 20 and one token every three
// seconds per client, which is generous for a human filling in a form.
func LoadRateLimitConfig() RateLimitConfig {
	rl := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 20),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 3*time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		PerRoute:       envBool("RATE_LIMIT_PER_ROUTE", true),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "suite:rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if rl.Capacity < 1 {
		rl.Capacity = 1
	}
	if rl.RefillTokens < 1 {
		rl.RefillTokens = 1
	}
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = time.Second
	}
	// a bucket must outlive a full refill cycle or it resets early
	if floor := 5 * rl.RefillInterval; rl.TTL < floor {
		rl.TTL = floor
	}
	return rl
}

func LoadCacheConfig() CacheConfig {
	cc := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      map[string]bool{},
		TTL:          envDur("CACHE_TTL", 5*time.Minute),
		Prefix:       envStr("CACHE_PREFIX", "suite:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 256<<10),
	}
	for _, m := range envList("CACHE_METHODS", "GET") {
		switch m = strings.ToUpper(m); m {
		case "GET", "HEAD":
			cc.Methods[m] = true
		}
	}
	if cc.TTL <= 0 {
		cc.TTL = 5 * time.Minute
	}
	return cc
}

// NewRedisClient connects and pings with a two second budget.  The error
// tells the caller why it is running without rate limiting and caching.
func NewRedisClient(ctx context.Context, rc RedisConfig) (*redis.Client, error) {
	var opts *redis.Options
	if rc.URL != "" {
		parsed, err := redis.ParseURL(rc.URL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB}
		if rc.TLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

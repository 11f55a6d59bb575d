// internal/app/ratelimit.go
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"
)

// RateLimiter counts requests per category and client in fixed redis windows.
// It fails open: when redis is down the API stays usable and we log instead.
type RateLimiter struct {
	enabled bool
	redis   *redis.Client
	rules   map[string]RateRule
}

func NewRateLimiter(config *Config) (*RateLimiter, error) {
	if !config.RateLimit.Enabled {
		return &RateLimiter{enabled: false}, nil
	}

	opt, err := redis.ParseURL(config.RateLimit.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RateLimiter{
		enabled: true,
		redis:   client,
		rules:   config.RateLimit.Rules,
	}, nil
}

func (l *RateLimiter) Close() error {
	if l.redis != nil {
		return l.redis.Close()
	}
	return nil
}

// Allow registers a hit for client in the category's current window and
// reports whether the request may proceed. Categories without a configured
// rule are unlimited.
func (l *RateLimiter) Allow(ctx context.Context, category, client string) bool {
	if !l.enabled {
		return true
	}

	rule, ok := l.rules[category]
	if !ok || rule.Limit <= 0 {
		return true
	}

	key := fmt.Sprintf("ratelimit:%s:%s", category, client)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		logger.Error.Printf("Rate limit check failed, letting request through: %v", err)
		return true
	}

	// first hit opens the window
	if count == 1 {
		window := time.Duration(rule.WindowSeconds) * time.Second
		if err := l.redis.Expire(ctx, key, window).Err(); err != nil {
			logger.Error.Printf("Failed to arm rate limit window for %s: %v", key, err)
		}
	}

	if count > int64(rule.Limit) {
		logger.Debug.Printf("Rate limit hit for %s", key)
		return false
	}
	return true
}

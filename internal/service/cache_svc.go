package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache TTLs. The leaderboard TTL is short because votes land continuously;
// correctness across the Monday boundary comes from the week-start key, not
// the TTL.
const (
	FeedCacheTTL        = 30 * time.Second
	LeaderboardCacheTTL = 30 * time.Second

	feedKey = "feed:latest"
)

// CacheService provides a Redis cache-aside layer for the feed and the
// weekly leaderboard.
type CacheService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewCacheService creates a CacheService. If redisURL is empty or the
// connection fails, it returns a CacheService with a nil client and every
// operation becomes a no-op.
func NewCacheService(redisURL string, log zerolog.Logger) *CacheService {
	if redisURL == "" {
		log.Info().Msg("redis: no URL configured, caching disabled")
		return &CacheService{log: log}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis: invalid URL, caching disabled")
		return &CacheService{log: log}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		return &CacheService{log: log}
	}

	log.Info().Msg("redis: connected, caching enabled")
	return &CacheService{rdb: rdb, log: log}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetFeed retrieves the cached feed. Returns nil when not cached or disabled.
func (c *CacheService) GetFeed(ctx context.Context) ([]byte, error) {
	return c.get(ctx, feedKey)
}

// SetFeed stores the feed response.
func (c *CacheService) SetFeed(ctx context.Context, data interface{}) error {
	return c.set(ctx, feedKey, data, FeedCacheTTL)
}

// InvalidateFeed removes the cached feed (called after uploads and votes).
func (c *CacheService) InvalidateFeed(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, feedKey).Err()
}

// GetLeaderboard retrieves the cached leaderboard for the given week start.
// Keying by week start means a cached board can never leak across the
// Monday-midnight boundary: the first request of a new week misses.
func (c *CacheService) GetLeaderboard(ctx context.Context, weekStart time.Time) ([]byte, error) {
	return c.get(ctx, leaderboardKey(weekStart))
}

// SetLeaderboard stores the leaderboard for the given week start.
func (c *CacheService) SetLeaderboard(ctx context.Context, weekStart time.Time, data interface{}) error {
	return c.set(ctx, leaderboardKey(weekStart), data, LeaderboardCacheTTL)
}

func (c *CacheService) get(ctx context.Context, key string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

func (c *CacheService) set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func leaderboardKey(weekStart time.Time) string {
	return fmt.Sprintf("leaderboard:%s", weekStart.Format(time.RFC3339))
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"NextDay/internal/model"
)

const redisKeyPrefix = "nextday:series:"

// RedisConfig configures the Redis cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache keeps fetched series in Redis with a key TTL.
type RedisCache struct {
	client *goredis.Client
	ttl    time.Duration
}

type redisEntry struct {
	FetchedAt int64             `json:"fetched_at"`
	Series    model.DailySeries `json:"series"`
}

// NewRedisCache connects to Redis and pings the server.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[INFO] redis cache connected to %s (db=%d, ttl=%s)", cfg.Addr, cfg.DB, cfg.TTL)
	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Entry, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeRedisEntry(raw)
}

// decodeRedisEntry reports a payload without points as a miss.
func decodeRedisEntry(raw []byte) (*Entry, error) {
	var re redisEntry
	if err := json.Unmarshal(raw, &re); err != nil {
		return nil, fmt.Errorf("decode cached series: %w", err)
	}
	if len(re.Series) == 0 {
		return nil, nil
	}
	return &Entry{Series: re.Series, FetchedAt: time.Unix(re.FetchedAt, 0)}, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, e *Entry) error {
	raw, err := json.Marshal(redisEntry{FetchedAt: e.FetchedAt.Unix(), Series: e.Series})
	if err != nil {
		return fmt.Errorf("encode series: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Purge is a no-op: Redis expires entries through the key TTL.
func (c *RedisCache) Purge(context.Context, time.Time) (int64, error) { return 0, nil }

func (c *RedisCache) Close() error {
	log.Println("[INFO] closing redis cache")
	return c.client.Close()
}

package sequence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/warehouse/backend/internal/infrastructure/config"
)

// RedisGenerator issues order numbers of the form <prefix><yyyyMMdd>-<seq>
// where seq is a zero-padded daily counter. The counter lives in Redis, so
// numbers stay unique across processes. Counter keys expire after 48 hours;
// the date in the key makes tomorrow's counter start fresh at 1.
type RedisGenerator struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisGenerator creates an order number generator backed by Redis
func NewRedisGenerator(cfg config.RedisConfig) (*RedisGenerator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis for order numbers: %w", err)
	}

	return NewRedisGeneratorWithClient(client), nil
}

// NewRedisGeneratorWithClient creates a generator with an existing Redis client
func NewRedisGeneratorWithClient(client *redis.Client) *RedisGenerator {
	return &RedisGenerator{
		client:    client,
		keyPrefix: "seq:order:",
	}
}

// Next returns the next order number for the prefix
func (g *RedisGenerator) Next(ctx context.Context, prefix string) (string, error) {
	date := time.Now().Format("20060102")
	key := g.keyPrefix + prefix + ":" + date

	seq, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("failed to increment order sequence: %w", err)
	}
	if seq == 1 {
		// Best effort; the dated key keeps numbers correct even if this fails
		g.client.Expire(ctx, key, 48*time.Hour)
	}

	return fmt.Sprintf("%s%s-%04d", prefix, date, seq), nil
}

// Close releases the underlying Redis connection
func (g *RedisGenerator) Close() error {
	return g.client.Close()
}

// MemoryGenerator issues order numbers from in-process counters. Suitable for
// single-instance deployments and tests; counters reset on restart, so the
// uniqueness of persisted numbers relies on the order number unique index.
type MemoryGenerator struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryGenerator creates an in-memory order number generator
func NewMemoryGenerator() *MemoryGenerator {
	return &MemoryGenerator{counters: make(map[string]int64)}
}

// Next returns the next order number for the prefix
func (g *MemoryGenerator) Next(_ context.Context, prefix string) (string, error) {
	date := time.Now().Format("20060102")
	key := prefix + ":" + date

	g.mu.Lock()
	g.counters[key]++
	seq := g.counters[key]
	g.mu.Unlock()

	return fmt.Sprintf("%s%s-%04d", prefix, date, seq), nil
}

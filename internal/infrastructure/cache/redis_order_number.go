package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tablekit/backoffice/internal/domain/order"
)

const (
	defaultSequencePrefix = "order_seq:"
	sequenceTTL           = 2 * time.Minute
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisOrderNumberGenerator issues order numbers from a per-second INCR
// counter shared by every instance pointed at the same Redis.
type RedisOrderNumberGenerator struct {
	client    *redis.Client
	keyPrefix string
	loc       *time.Location
}

// NewRedisOrderNumberGenerator connects to Redis and verifies the connection
func NewRedisOrderNumberGenerator(cfg RedisConfig, loc *time.Location) (*RedisOrderNumberGenerator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisOrderNumberGeneratorWithClient(client, "", loc), nil
}

// NewRedisOrderNumberGeneratorWithClient creates a generator with an existing client
func NewRedisOrderNumberGeneratorWithClient(client *redis.Client, keyPrefix string, loc *time.Location) *RedisOrderNumberGenerator {
	if keyPrefix == "" {
		keyPrefix = defaultSequencePrefix
	}
	if loc == nil {
		loc = time.Local
	}
	return &RedisOrderNumberGenerator{
		client:    client,
		keyPrefix: keyPrefix,
		loc:       loc,
	}
}

// Next increments the counter for the second containing at.
// The key expires shortly after that second has passed.
func (g *RedisOrderNumberGenerator) Next(ctx context.Context, at time.Time) (string, error) {
	at = at.In(g.loc)
	key := g.keyPrefix + at.Format(order.NumberTimeLayout)

	pipe := g.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, sequenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to increment order sequence: %w", err)
	}

	return order.FormatNumber(at, incr.Val()), nil
}

// Ping checks the Redis connection
func (g *RedisOrderNumberGenerator) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (g *RedisOrderNumberGenerator) Close() error {
	return g.client.Close()
}

var _ order.NumberGenerator = (*RedisOrderNumberGenerator)(nil)

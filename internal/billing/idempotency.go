package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/config"
	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/redis/go-redis/v9"
)

// IdempotencyStore remembers which payment references were applied
type IdempotencyStore interface {
	// MarkProcessed records the confirmation and reports whether it was new
	MarkProcessed(ctx context.Context, evt account.PaymentConfirmation) (bool, error)

	// Release forgets a reference so a redelivery is applied again
	Release(ctx context.Context, paymentRef string) error
}

const redisKeyPrefix = "tasknest:payment:"

// RedisIdempotencyStore keeps processed references as expiring Redis keys
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}

	return client, nil
}

// NewRedisIdempotencyStore creates a store whose marks expire after ttl
func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

// MarkProcessed sets the reference key only if it does not exist yet
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, evt account.PaymentConfirmation) (bool, error) {
	ok, err := s.client.SetNX(ctx, redisKeyPrefix+evt.PaymentReference, evt.AccountID, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx payment %s: %w", evt.PaymentReference, err)
	}
	return ok, nil
}

// Release deletes the reference key
func (s *RedisIdempotencyStore) Release(ctx context.Context, paymentRef string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+paymentRef).Err(); err != nil {
		return fmt.Errorf("redis del payment %s: %w", paymentRef, err)
	}
	return nil
}

var _ IdempotencyStore = (*RedisIdempotencyStore)(nil)

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// webhookEventTTL bounds how long processed Stripe event IDs are remembered.
// Stripe retries for up to three days.
const webhookEventTTL = 72 * time.Hour

type RedisClient struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisClient(addr, password string, db int, log *zap.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("redis connected", zap.String("addr", addr))

	return &RedisClient{client: rdb, log: log}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// FirstDelivery claims a webhook event ID. SETNX makes the claim atomic:
// exactly one delivery of a redelivered event observes true.
func (r *RedisClient) FirstDelivery(ctx context.Context, eventID string) (bool, error) {
	key := fmt.Sprintf("webhook:event:%s", eventID)
	return r.client.SetNX(ctx, key, "1", webhookEventTTL).Result()
}

// Forget releases a claimed event ID. Called when processing the event
// failed: the claim must not outlive the attempt, or Stripe's retry of
// the same event would be suppressed for the key's whole TTL.
func (r *RedisClient) Forget(ctx context.Context, eventID string) error {
	key := fmt.Sprintf("webhook:event:%s", eventID)
	return r.client.Del(ctx, key).Err()
}

package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hulame/rental-service/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis. It returns nil when no address is configured;
// an unreachable server is logged and the client kept for later retries.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Warn("REDIS_ADDR not provided; realtime notifications disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// Publish JSON-encodes payload onto channel.
func (r *Redis) Publish(ctx context.Context, channel string, payload any) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.Client.Publish(ctx, channel, body).Err()
}

// Subscribe opens a subscription on channel. Callers must Close it.
func (r *Redis) Subscribe(ctx context.Context, channel string) (*redis.PubSub, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("redis client not configured")
	}
	sub := r.Client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}
	return sub, nil
}

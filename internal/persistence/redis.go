package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/config"
)

// Redis holds the client used for broadcast fan-out between instances.
type Redis struct {
	Client redis.UniversalClient
}

// NewRedis builds a client for REDIS_ADDR. A comma-separated address list
// selects a cluster client. An unreachable server is logged, not fatal:
// broadcasts then fall back to the local hub.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	var addrs []string
	for _, a := range strings.Split(cfg.Addr, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    addrs,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis; broadcasts stay local until it recovers",
			zap.Strings("addrs", addrs), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.Strings("addrs", addrs), zap.String("channel", cfg.BroadcastChannel))
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping backs the readiness check.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

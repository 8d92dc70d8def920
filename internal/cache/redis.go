package cache

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/config"
)

// NewRedisClient returns nil when no Redis address is configured.
func NewRedisClient(lc fx.Lifecycle, cfg *config.Config, logger *zap.SugaredLogger) *redis.Client {
	if cfg.RedisAddr == "" {
		logger.Info("Redis not configured, rate limits stay in memory.")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrapf(err, "ping redis %s", cfg.RedisAddr)
			}
			logger.Infow("Connected to Redis.", "addr", cfg.RedisAddr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing Redis client.")
			return client.Close()
		},
	})

	return client
}

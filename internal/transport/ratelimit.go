package transport

import (
	"context"
	_ "embed"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/models"
)

const (
	msgTooManyRequests = "Too many requests, please try again later."
	rateLimitKeyPrefix = "bookmarker:ratelimit:"
	redisCallTimeout   = 200 * time.Millisecond
)

//go:embed ratelimit.lua
var rateLimitScript string

// RedisLimiterStore counts requests per client in a fixed window shared by every instance.
// Redis failures let the request through.
type RedisLimiterStore struct {
	client *redis.Client
	script *redis.Script
	limit  int
	window time.Duration
	logger *zap.SugaredLogger
}

func NewRedisLimiterStore(client *redis.Client, limit int, window time.Duration, l *zap.SugaredLogger) *RedisLimiterStore {
	return &RedisLimiterStore{
		client: client,
		script: redis.NewScript(rateLimitScript),
		limit:  limit,
		window: window,
		logger: l,
	}
}

func (s *RedisLimiterStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()

	key := rateLimitKeyPrefix + identifier
	res, err := s.script.Run(ctx, s.client, []string{key}, s.limit, s.window.Milliseconds()).Int64Slice()
	if err != nil {
		s.logger.Warnw("rate limit check failed, allowing request", "key", key, "error", err)
		return true, nil
	}
	if len(res) != 3 {
		s.logger.Warnw("unexpected rate limit script result", "key", key, "result", res)
		return true, nil
	}

	if res[0] != 1 {
		s.logger.Debugw("rate limit exceeded", "key", key, "count", res[1], "retry_after_ms", res[2])
		return false, nil
	}
	return true, nil
}

// NewLimiterStore picks the shared Redis store when a client is configured and an in-process
// store otherwise.
func NewLimiterStore(cfg *config.Config, client *redis.Client, l *zap.SugaredLogger) middleware.RateLimiterStore {
	if client != nil {
		return NewRedisLimiterStore(client, cfg.RateLimitMax, cfg.RateLimitWindow, l)
	}
	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(cfg.RateLimitMax) / cfg.RateLimitWindow.Seconds()),
		Burst:     cfg.RateLimitMax,
		ExpiresIn: cfg.RateLimitWindow,
	})
}

func NewRateLimiter(store middleware.RateLimiterStore) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errors.Wrap(err, "extract rate limit identifier")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, models.ErrorResp{
				Success: false,
				Message: msgTooManyRequests,
			})
		},
	})
}

package transport_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/db/dbtest"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/service"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/transport"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/validation"
)

type fixedResolver string

func (r fixedResolver) Resolve(context.Context, string) string { return string(r) }

func testConfig() *config.Config {
	return &config.Config{
		Env:             config.EnvDevelopment,
		DBDriver:        config.DriverSQLite,
		CORSOrigins:     []string{"*"},
		RateLimitMax:    1000,
		RateLimitWindow: time.Minute,
	}
}

func newServer(t *testing.T, limiter middleware.RateLimiterStore) *transport.HTTPServer {
	t.Helper()
	svc := service.NewBookmarks(dbtest.NewStore(t), fixedResolver("Resolved Title"), validation.New(), zap.NewNop().Sugar())
	return transport.New(testConfig(), svc, limiter, zap.NewNop().Sugar())
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

// redisClientForUnreachable points at a port nothing listens on.
func redisClientForUnreachable(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

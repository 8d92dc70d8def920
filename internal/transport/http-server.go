package transport

import (
	"context"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/models"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/service"
)

type (
	BookmarkService interface {
		List(ctx context.Context, p service.ListParams) (service.ListResult, error)
		Get(ctx context.Context, id string) (models.Bookmark, error)
		Create(ctx context.Context, in models.BookmarkInput) (models.Bookmark, error)
		Update(ctx context.Context, id string, in models.BookmarkInput) (models.Bookmark, error)
		Delete(ctx context.Context, id string) error
		FetchTitle(ctx context.Context, url string) string
		Ping(ctx context.Context) error
	}

	HTTPServer struct {
		echo    *echo.Echo
		service BookmarkService
		cfg     *config.Config
		logger  *zap.SugaredLogger
	}
)

// New builds the router. limiter may be nil to serve without rate limiting.
func New(cfg *config.Config, svc BookmarkService, limiter middleware.RateLimiterStore, logger *zap.SugaredLogger) *HTTPServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	instance := HTTPServer{
		echo:    e,
		service: svc,
		cfg:     cfg,
		logger:  logger,
	}

	e.HTTPErrorHandler = instance.handleError

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Infow("request",
				"id", v.RequestID,
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(middleware.BodyLimit("1M"))

	apiG := e.Group("/api")
	if limiter != nil {
		apiG.Use(NewRateLimiter(limiter))
	}
	apiG.GET("/health", instance.Health)

	bookmarkG := apiG.Group("/bookmarks")
	bookmarkG.GET("", instance.BookmarkList)
	bookmarkG.GET("/fetch-title", instance.FetchTitle)
	bookmarkG.GET("/:id", instance.BookmarkGet)
	bookmarkG.POST("", instance.BookmarkCreate)
	bookmarkG.PUT("/:id", instance.BookmarkUpdate)
	bookmarkG.DELETE("/:id", instance.BookmarkDelete)

	return &instance
}

func NewHTTPServer(lc fx.Lifecycle, cfg *config.Config, svc BookmarkService, limiter middleware.RateLimiterStore, logger *zap.SugaredLogger) *HTTPServer {
	instance := New(cfg, svc, limiter, logger)
	e := instance.echo

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listen := net.JoinHostPort(cfg.Host, cfg.Port)
			ln, err := net.Listen("tcp", listen)
			if err != nil {
				return errors.Wrapf(err, "listen %s", listen)
			}
			e.Listener = ln
			logger.Infow("Starting HTTP server.", "addr", ln.Addr().String())
			go func() {
				if err := e.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Errorw("HTTP server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return e.Shutdown(ctx)
		},
	})

	return instance
}

func (s *HTTPServer) Handler() http.Handler {
	return s.echo
}

// Addr is the bound address once the server has started.
func (s *HTTPServer) Addr() string {
	if s.echo.Listener == nil {
		return ""
	}
	return s.echo.Listener.Addr().String()
}

package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/cache"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/db"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/logger"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/rpc"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/seed"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/service"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/titles"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/transport"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/validation"
)

// CoreModule wires the store and the bookmark service. It expects a *config.Config.
var CoreModule = fx.Options(
	fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: l}
	}),
	fx.Provide(
		logger.NewFromConfig,
		db.NewGormClient,
		fx.Annotate(db.NewStore, fx.As(new(service.Store))),
		validation.New,
		fx.Annotate(titles.NewResolverFromConfig, fx.As(new(service.TitleResolver))),
		fx.Annotate(
			service.NewBookmarks,
			fx.As(fx.Self()),
			fx.As(new(transport.BookmarkService)),
			fx.As(new(rpc.Pinger)),
		),
	),
	fx.Invoke(closeDBOnStop),
)

// ServerModule adds the HTTP and gRPC servers on top of CoreModule.
var ServerModule = fx.Options(
	fx.Provide(
		cache.NewRedisClient,
		transport.NewLimiterStore,
		transport.NewHTTPServer,
	),
	rpc.Module,
	fx.Invoke(
		seedOnStart,
		func(*transport.HTTPServer, *grpc.Server) {},
	),
)

func closeDBOnStop(lc fx.Lifecycle, gdb *gorm.DB, l *zap.SugaredLogger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			l.Info("Closing database pool.")
			return sqlDB.Close()
		},
	})
}

func seedOnStart(lc fx.Lifecycle, cfg *config.Config, svc *service.Bookmarks, l *zap.SugaredLogger) {
	if !cfg.SeedOnStart {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return Seed(ctx, cfg, svc, l)
		},
	})
}

// Seed loads the configured seed data into an empty store.
func Seed(ctx context.Context, cfg *config.Config, svc *service.Bookmarks, l *zap.SugaredLogger) error {
	entries, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return err
	}
	n, err := svc.Seed(ctx, entries)
	if err != nil {
		return err
	}
	if n > 0 {
		l.Infow("Auto-seeded bookmarks.", "count", n)
	}
	return nil
}

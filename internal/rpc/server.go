package rpc

import (
	"context"
	"net"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/config"
)

// ServiceName is the health service name reported alongside the overall "" service.
const ServiceName = "bookmarker.Bookmarks"

type (
	Pinger interface {
		Ping(ctx context.Context) error
	}

	// HealthServer answers grpc.health.v1 checks by pinging the bookmark store.
	HealthServer struct {
		grpc_health_v1.UnimplementedHealthServer
		pinger Pinger
		logger *zap.SugaredLogger
	}
)

func NewHealthServer(p Pinger, logger *zap.SugaredLogger) *HealthServer {
	return &HealthServer{
		pinger: p,
		logger: logger,
	}
}

func (s *HealthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	switch req.GetService() {
	case "", ServiceName:
	default:
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}

	if err := s.pinger.Ping(ctx); err != nil {
		s.logger.Warnw("health check: store ping failed", "error", err)
		return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}, nil
}

func Register(grpcServer *grpc.Server, health *HealthServer) {
	grpc_health_v1.RegisterHealthServer(grpcServer, health)
	reflection.Register(grpcServer)
}

func NewGRPCServer(lc fx.Lifecycle, cfg *config.Config, health *HealthServer, logger *zap.SugaredLogger) *grpc.Server {
	grpcServer := grpc.NewServer()
	Register(grpcServer, health)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listen := net.JoinHostPort(cfg.Host, cfg.GRPCPort)
			lis, err := net.Listen("tcp", listen)
			if err != nil {
				return errors.Wrapf(err, "listen %s", listen)
			}
			logger.Infow("Starting GRPC server.", "addr", lis.Addr().String())

			go func() {
				if err := grpcServer.Serve(lis); err != nil {
					logger.Errorw("GRPC server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping GRPC server.")
			grpcServer.GracefulStop()
			return nil
		},
	})

	return grpcServer
}

package deskserver

import (
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cory-johannsen/hotel/internal/auth"
	"github.com/cory-johannsen/hotel/internal/desk"
)

// Server hosts the FrontDesk and health services.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger *zap.Logger
}

// NewServer builds a gRPC server for m. Admin methods are verified against v.
//
// Precondition: m, v and logger must be non-nil.
// Postcondition: Returns a Server whose health status is SERVING for both
// the FrontDesk service and the server as a whole.
func NewServer(m *desk.Manager, v *auth.Verifier, logger *zap.Logger, opts ...grpc.ServerOption) *Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(
		loggingInterceptor(logger),
		adminInterceptor(v, logger),
	))
	gs := grpc.NewServer(opts...)
	RegisterFrontDeskServer(gs, NewService(m, logger))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{grpc: gs, health: hs, logger: logger}
}

// Serve accepts connections on lis until Stop.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("front desk grpc listening", zap.String("addr", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// Stop marks the services NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
	s.logger.Info("front desk grpc stopped")
}

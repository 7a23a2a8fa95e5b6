package grpcx

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthgrpc "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is what probes pass in HealthCheckRequest.Service.
const ServiceName = "chat-service"

// NewServer builds the gRPC server with the standard health service behind
// the logging/recovery interceptors. The health endpoint is the gRPC twin of
// GET /api/health for infrastructure that probes over gRPC.
func NewServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(StreamServerInterceptor()),
	)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthgrpc.HealthCheckResponse_SERVING)
	healthgrpc.RegisterHealthServer(srv, hs)

	return srv, hs
}

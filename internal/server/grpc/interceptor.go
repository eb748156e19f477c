package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/camfeed/internal/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

func (s *HealthServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	code := status.Code(err)
	metrics.GRPCRequests.WithLabelValues(info.FullMethod, code.String()).Inc()
	s.logger.Debug(ctx, "gRPC request",
		"method", info.FullMethod,
		"code", code.String(),
		"duration", time.Since(start),
	)
	return resp, err
}

package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/camfeed/internal/logging"
	"github.com/dmitrijs2005/camfeed/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestInterceptor_PassesThroughAndCounts(t *testing.T) {
	s := NewHealthServer("", okPinger{}, time.Second, logging.Nop{})
	info := &grpc.UnaryServerInfo{FullMethod: "/pkg.Service/Method"}

	before := testutil.ToFloat64(metrics.GRPCRequests.WithLabelValues(info.FullMethod, codes.OK.String()))

	resp, err := s.loggingInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}

	after := testutil.ToFloat64(metrics.GRPCRequests.WithLabelValues(info.FullMethod, codes.OK.String()))
	if after != before+1 {
		t.Fatalf("counter not incremented: %v -> %v", before, after)
	}
}

func TestInterceptor_KeepsHandlerError(t *testing.T) {
	s := NewHealthServer("", okPinger{}, time.Second, logging.Nop{})
	info := &grpc.UnaryServerInfo{FullMethod: "/pkg.Service/Method"}

	_, err := s.loggingInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.NotFound, "nope")
	})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("want NotFound, got %v", err)
	}
	if got := testutil.ToFloat64(metrics.GRPCRequests.WithLabelValues(info.FullMethod, codes.NotFound.String())); got < 1 {
		t.Fatalf("NotFound not counted: %v", got)
	}
}

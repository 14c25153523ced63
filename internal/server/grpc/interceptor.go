package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

func (s *HealthServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	start := time.Now()
	resp, err := handler(ctx, req)

	if err != nil {
		s.logger.Warn(ctx, "grpc call failed", "method", info.FullMethod, "code", status.Code(err).String(),
			"duration", time.Since(start).String())
	}

	return resp, err
}

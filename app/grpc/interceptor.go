package grpc

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-receipts/app/factory"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const requestIDHeader = "x-request-id"

type requestIDKey struct{}

var interceptorLogger = factory.NewModuleLogger("grpc")

func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func requestIDFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get(requestIDHeader) {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// RequestIDInterceptor rejects calls without an x-request-id and echoes the
// id back in the response header.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		requestID := requestIDFromMetadata(ctx)
		if requestID == "" {
			return nil, status.Error(codes.InvalidArgument, "x-request-id is required")
		}

		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, requestID))
		return handler(context.WithValue(ctx, requestIDKey{}, requestID), req)
	}
}

func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				interceptorLogger.WithFields(logrus.Fields{
					"method": info.FullMethod,
					"panic":  r,
					"stack":  string(debug.Stack()),
				}).Error("grpc_panic")
				err = status.Error(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		entry := loggerWithContext(ctx).WithFields(logrus.Fields{
			"method":     info.FullMethod,
			"code":       status.Code(err).String(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if err != nil {
			entry.WithError(err).Warn("grpc_request")
		} else {
			entry.Info("grpc_request")
		}
		return resp, err
	}
}

func loggerWithContext(ctx context.Context) *logrus.Entry {
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		return interceptorLogger.WithField("request_id", requestID)
	}
	return interceptorLogger
}

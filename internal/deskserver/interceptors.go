package deskserver

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/cory-johannsen/hotel/internal/auth"
)

// PasswordMetadataKey carries the admin password on admin calls.
const PasswordMetadataKey = "x-admin-password"

// adminInterceptor rejects admin methods whose password does not verify.
func adminInterceptor(v *auth.Verifier, logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !adminMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		if !v.Enabled() {
			return nil, status.Error(codes.PermissionDenied, auth.ErrAdminDisabled.Error())
		}

		var password string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(PasswordMetadataKey); len(vals) > 0 {
				password = vals[0]
			}
		}
		if password == "" {
			return nil, status.Error(codes.Unauthenticated, "admin password required")
		}
		if err := v.Verify(password); err != nil {
			logger.Warn("admin call rejected", zap.String("method", info.FullMethod))
			if errors.Is(err, auth.ErrAdminDisabled) {
				return nil, status.Error(codes.PermissionDenied, err.Error())
			}
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return handler(ctx, req)
	}
}

// loggingInterceptor logs each call with its status code and duration.
func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if code == codes.Internal || code == codes.Unknown {
			logger.Error("grpc call failed", append(fields, zap.Error(err))...)
		} else {
			logger.Debug("grpc call", fields...)
		}
		return resp, err
	}
}

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/MichealAPI/payly/internal/metrics"
)

// LoggingInterceptor returns a Connect interceptor that logs and counts every RPC call.
// Install it outside RequireAuth so rejected calls are recorded too.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			elapsed := time.Since(start)
			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			metrics.ObserveRPC(procedure, code, elapsed)

			var connectErr *connect.Error
			switch {
			case err == nil:
				slog.Info("RPC ok",
					"procedure", procedure,
					"duration_ms", elapsed.Milliseconds(),
				)
			case errors.As(err, &connectErr) && connectErr.Code() != connect.CodeInternal:
				slog.Warn("RPC error",
					"procedure", procedure,
					"code", connectErr.Code(),
					"error", connectErr.Message(),
					"duration_ms", elapsed.Milliseconds(),
				)
			default:
				slog.Error("RPC error",
					"procedure", procedure,
					"error", err,
					"duration_ms", elapsed.Milliseconds(),
				)
			}

			return resp, err
		}
	}
}

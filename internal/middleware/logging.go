package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// GetRequestID returns the request ID assigned by LoggingInterceptor.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// It logs the procedure name, request ID, user ID, duration, and any error codes/messages.
// A caller-supplied X-Request-Id is kept; otherwise a UUID is generated. The ID
// is echoed in the response header.
// Place it after the auth interceptor so user IDs are known.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			userID := GetUserID(ctx) // 0 if unauthenticated

			requestID := req.Header().Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			ctx = context.WithValue(ctx, RequestIDKey, requestID)

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) && connectErr.Code() != connect.CodeInternal {
					slog.WarnContext(ctx, "RPC error",
						"procedure", procedure,
						"request_id", requestID,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
						"user_id", userID,
						"duration_ms", duration,
					)
				} else {
					slog.ErrorContext(ctx, "RPC error",
						"procedure", procedure,
						"request_id", requestID,
						"error", err,
						"user_id", userID,
						"duration_ms", duration,
					)
				}
				if connectErr != nil {
					connectErr.Meta().Set(requestIDHeader, requestID)
				}
			} else {
				slog.InfoContext(ctx, "RPC ok",
					"procedure", procedure,
					"request_id", requestID,
					"user_id", userID,
					"duration_ms", duration,
				)
				resp.Header().Set(requestIDHeader, requestID)
			}

			return resp, err
		}
	}
}

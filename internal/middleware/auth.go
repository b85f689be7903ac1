// Package middleware holds the Connect interceptors shared by every service.
package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// EmailKey is the context key for storing the authenticated user's email.
	EmailKey contextKey = "email"
	// RequestIDKey is the context key for the per-call request ID.
	RequestIDKey contextKey = "request_id"
)

// GetUserID extracts the user ID from the context.
// Returns 0 if the call is unauthenticated.
func GetUserID(ctx context.Context) int64 {
	userID, _ := ctx.Value(UserIDKey).(int64)
	return userID
}

// GetEmail extracts the user email from the context.
// Returns empty string if not found.
func GetEmail(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}

// WithUser returns a context carrying an authenticated user.
func WithUser(ctx context.Context, userID int64, email string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, EmailKey, email)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func authenticate(jwtManager *auth.JWTManager, header string) (int64, string, error) {
	token, ok := bearerToken(header)
	if !ok {
		return 0, "", auth.ErrInvalidToken
	}
	claims, err := jwtManager.Validate(token)
	if err != nil {
		return 0, "", err
	}
	userID, err := claims.UserID()
	if err != nil {
		return 0, "", err
	}
	return userID, claims.Email, nil
}

// RequireAuth returns an interceptor that validates JWT tokens and requires
// authentication, except for the procedures listed in public.
// It adds the user ID and email to the request context.
func RequireAuth(jwtManager *auth.JWTManager, public ...string) connect.UnaryInterceptorFunc {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if open[req.Spec().Procedure] {
				return next(ctx, req)
			}

			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			userID, email, err := authenticate(jwtManager, authHeader)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithUser(ctx, userID, email), req)
		}
	}
}

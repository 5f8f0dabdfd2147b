package middleware

import (
	"context"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"github.com/xoulomon/stellarsave/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// PrincipalKey is the context key holding the authenticated principal.
const PrincipalKey contextKey = "principal"

// GetPrincipal extracts the authenticated principal from the context.
// Returns empty string if the request was not authenticated.
func GetPrincipal(ctx context.Context) string {
	principal, _ := ctx.Value(PrincipalKey).(string)
	return principal
}

// WithPrincipal returns a context carrying principal. The payout scheduler
// uses it to act as the operator without a token.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

// RequireAuth returns an interceptor that rejects requests without a valid
// token and stores the token's principal in the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			token, err := bearerToken(req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			claims, err := jwtManager.Validate(token)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithPrincipal(ctx, claims.Principal), req)
		}
	}
}

// OptionalAuth validates a token when one is present but lets anonymous
// requests through. Read-only procedures use it so logs still name the caller.
func OptionalAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token, err := bearerToken(req.Header().Get("Authorization")); err == nil {
				if claims, err := jwtManager.Validate(token); err == nil {
					ctx = WithPrincipal(ctx, claims.Principal)
				}
			}
			return next(ctx, req)
		}
	}
}

// ContextAuthorizer authorizes a principal when it matches the one
// authenticated for the current request.
type ContextAuthorizer struct{}

// RequireAuth succeeds only if the context carries principal.
func (ContextAuthorizer) RequireAuth(ctx context.Context, principal string) error {
	got := GetPrincipal(ctx)
	if got == "" {
		return auth.ErrMissingToken
	}
	if got != principal {
		return fmt.Errorf("request is authenticated as %q, not %q", got, principal)
	}
	return nil
}

// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All request-scoped values shared across packages are keyed here.
// The environment partition is the one exception; it lives in pkg/environment
// because every collaborator package needs it without importing pkg/auth.
//
// USAGE PATTERN:
//
//	import "github.com/roamjs/gateway/pkg/contextkeys"
//	ctx = contextkeys.WithDeveloper(ctx, authCtx)
//	authCtx, _ := ctx.Value(contextkeys.DeveloperKey).(*auth.AuthContext)
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// DeveloperKey contains *auth.AuthContext for the extension developer
	// Set by: middleware.DeveloperGuard (pkg/middleware/auth.go)
	// Required by: every developer-scoped endpoint
	DeveloperKey Key = "developer"

	// UserKey contains *auth.AuthContext for the end user
	// Set by: middleware.UserGuard (pkg/middleware/auth.go)
	// Required by: the user-info endpoint
	UserKey Key = "user"

	// RequestIDKey contains request ID string (UUID)
	// Set by: httputil.RequestIDMiddleware
	// Used by: Logger
	RequestIDKey Key = "request_id"
)

// WithDeveloper adds the authenticated developer to the context
func WithDeveloper(ctx context.Context, authCtx interface{}) context.Context {
	return context.WithValue(ctx, DeveloperKey, authCtx)
}

// WithUser adds the authenticated end user to the context
func WithUser(ctx context.Context, authCtx interface{}) context.Context {
	return context.WithValue(ctx, UserKey, authCtx)
}

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

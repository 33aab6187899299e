// Package ctxkeys holds the typed context keys shared by the API middleware and handlers.
// It is a leaf package so middleware and handlers can both import it without a cycle.
package ctxkeys

import "context"

// Key is the named type for all API context keys, so they never collide with string keys
// set by other packages.
type Key string

const (
	// UserID is the authenticated user, injected by AuthMiddleware from the token subject.
	UserID Key = "user_id"
)

// WithValue adds a ctxkeys.Key value to the context.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// String returns the non-empty string stored under key.
func String(ctx context.Context, key Key) (string, bool) {
	v, ok := ctx.Value(key).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

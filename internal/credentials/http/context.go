package http

import (
	"context"
)

// userIDKey is a context key type for storing the authenticated user identifier.
type userIDKey struct{}

// WithUserID stores the authenticated user identifier in the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserID retrieves the authenticated user identifier from the context.
// Returns ("", false) when the identity middleware did not run.
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

package common

import (
	"context"
)

// UserContext carries per-request caller details taken from the incoming
// dashboard request. The session is forwarded verbatim to the backend; this
// service never validates it.
type UserContext struct {
	UserID    string
	SessionID string
}

type contextKey int

const userContextKey contextKey = iota

// WithUserContext stores a UserContext in the request context.
func WithUserContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// UserContextFromContext retrieves the UserContext from context, or nil if absent.
func UserContextFromContext(ctx context.Context) *UserContext {
	uc, _ := ctx.Value(userContextKey).(*UserContext)
	return uc
}

// ResolveUserID returns the UserID from context, or "default" when no user context is present.
// Snapshot keys are scoped by it.
func ResolveUserID(ctx context.Context) string {
	if uc := UserContextFromContext(ctx); uc != nil && uc.UserID != "" {
		return uc.UserID
	}
	return "default"
}

// ResolveSession returns the caller's backend session if one was forwarded,
// otherwise fallback (the configured service session).
func ResolveSession(ctx context.Context, fallback string) string {
	if uc := UserContextFromContext(ctx); uc != nil && uc.SessionID != "" {
		return uc.SessionID
	}
	return fallback
}

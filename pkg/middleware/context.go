package middleware

import (
	"context"
	"net/http"
)

type uidKey struct{}

// WithUID stores the authenticated user's uid in ctx.
func WithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, uidKey{}, uid)
}

// UIDFromCtx returns the authenticated uid placed in the request context by
// Authenticate.
func UIDFromCtx(r *http.Request) (string, bool) {
	uid, ok := r.Context().Value(uidKey{}).(string)
	return uid, ok && uid != ""
}

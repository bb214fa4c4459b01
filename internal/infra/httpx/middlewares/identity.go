// Package middlewares carries the HTTP middlewares specific to this service.
package middlewares

import (
	"context"
	"net/http"
)

// Identity headers injected by the fronting auth proxy. The service treats
// the identity as opaque; it never validates credentials itself.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
)

type contextKey string

const (
	contextKeyUserID    contextKey = "user_id"
	contextKeyUserEmail contextKey = "user_email"
)

// AttachIdentity copies the auth proxy's identity headers into the request
// context so handlers do not touch headers directly.
func AttachIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), contextKeyUserID, r.Header.Get(HeaderUserID))
		ctx = context.WithValue(ctx, contextKeyUserEmail, r.Header.Get(HeaderUserEmail))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user id, or "" for anonymous callers.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyUserID).(string)
	return id
}

func UserEmail(ctx context.Context) string {
	email, _ := ctx.Value(contextKeyUserEmail).(string)
	return email
}

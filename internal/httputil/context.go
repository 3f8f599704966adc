package httputil

import (
	"context"
	"net/http"
)

type userIDKey struct{}

// ContextWithUserID returns ctx carrying the authenticated user's id
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the authenticated user's id, if the auth middleware set one
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// WithUserID attaches userID to the request; used by the auth middleware
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(ContextWithUserID(r.Context(), userID))
}

// GetUserID returns the request's user id, or "" when unauthenticated
func GetUserID(r *http.Request) string {
	userID, _ := UserIDFromContext(r.Context())
	return userID
}

// RequireUserID returns the request's user id, answering 401 when there is none.
// Every placement operation is scoped to a user, so handlers stop on false.
func RequireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		RespondError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}

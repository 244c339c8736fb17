package session

import (
	"context"
	"net/http"

	"github.com/mpetrov/screencast/internal/models"
)

// contextKey is unexported so only this package can place session values in
// a request context.
type contextKey string

const userKey contextKey = "sessionUser"

// Require rejects requests without a valid session with 401 and stores the
// resolved user in the request context otherwise.
func Require(provider Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := provider.GetSession(r.Context(), r.Header.Get("Cookie"))
			if err != nil || user == nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthenticated","message":"authentication required"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// Optional resolves the session when present but never blocks the request.
// Anonymous callers proceed with no user in context.
func Optional(provider Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, err := provider.GetSession(r.Context(), r.Header.Get("Cookie")); err == nil && user != nil {
				r = r.WithContext(withUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withUser(ctx context.Context, user *models.SessionUser) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated caller, or (nil, false) for an
// anonymous request.
func UserFromContext(ctx context.Context) (*models.SessionUser, bool) {
	user, ok := ctx.Value(userKey).(*models.SessionUser)
	return user, ok && user != nil
}

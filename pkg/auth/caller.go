package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"

	"github.com/lettable/booking-admin/pkg/rbac"
)

// Caller is the authenticated identity attached to a request.
type Caller struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	Claims      rbac.Claims
	Role        rbac.Role
}

// IsAdmin reports whether the caller's token carries the admin flag.
func (c *Caller) IsAdmin() bool {
	return c != nil && c.Claims.Admin
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "bookadmin context value " + k.name
}

var callerKey = &contextKey{"Caller"}

// CallerMiddleware extracts the verified token claims and attaches a Caller
// to the request context. Requests without a valid token pass through with
// no caller; services treat a missing caller as unauthenticated, so the
// error surfaces with the operation's own error shape instead of a bare 401.
// Must be used after the jwtauth Verifier.
func CallerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || claims == nil {
			next.ServeHTTP(w, r)
			return
		}

		sub, _ := claims["sub"].(string)
		id, err := uuid.Parse(sub)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		caller := &Caller{ID: id, Claims: rbac.ClaimsFromMap(claims)}
		caller.Role = caller.Claims.Role()
		caller.Email, _ = claims["email"].(string)
		caller.DisplayName, _ = claims["name"].(string)

		ctx := context.WithValue(r.Context(), callerKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerFromContext returns the request's caller, or nil if the request was
// not authenticated.
func CallerFromContext(ctx context.Context) *Caller {
	caller, _ := ctx.Value(callerKey).(*Caller)
	return caller
}

// WithCaller returns a context carrying the given caller. Used by tests and
// by the console when replaying operations.
func WithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

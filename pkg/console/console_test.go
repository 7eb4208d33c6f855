package console

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lettable/booking-admin/pkg/admin"
	adminapi "github.com/lettable/booking-admin/pkg/admin/api"
	"github.com/lettable/booking-admin/pkg/auth"
	"github.com/lettable/booking-admin/pkg/directory"
	"github.com/lettable/booking-admin/pkg/profile"
	"github.com/lettable/booking-admin/pkg/rbac"
)

type consoleFixture struct {
	console      *Console
	directory    *directory.Service
	profiles     *profile.Service
	rosterCalls  atomic.Int64
	refreshCalls atomic.Int64
}

// newConsoleFixture runs a real server stack so the client is exercised
// against the actual wire contract.
func newConsoleFixture(t *testing.T) *consoleFixture {
	t.Helper()
	f := &consoleFixture{}

	f.directory = directory.NewService(directory.NewInMemoryRepository())
	f.profiles = profile.NewService(profile.NewInMemoryRepository())
	tokenSvc := auth.NewTokenService("test-secret", "test-issuer")
	adminSvc := admin.NewService(f.directory, f.profiles)

	authHandle := auth.NewHandle(f.directory, f.profiles, tokenSvc, auth.WithSecureCookies(false))
	adminHandle := adminapi.NewHandle(adminSvc)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			switch req.URL.Path {
			case "/api/admin/users":
				f.rosterCalls.Add(1)
			case "/auth/refresh":
				f.refreshCalls.Add(1)
			}
			next.ServeHTTP(w, req)
		})
	})
	authHandle.RegisterRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenSvc.JWTAuth()))
		r.Use(auth.CallerMiddleware)
		adminHandle.RegisterRoutes(r)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	f.console = New(server.URL)
	return f
}

func (f *consoleFixture) seedUser(t *testing.T, email, name string, role rbac.Role) directory.Identity {
	t.Helper()
	ctx := context.Background()
	ident, err := f.directory.Register(ctx, email, "secret", name)
	require.NoError(t, err)
	require.NoError(t, f.directory.SetRole(ctx, ident.ID, role))
	_, err = f.profiles.SetRole(ctx, ident.ID, ident.Email, ident.DisplayName, role)
	require.NoError(t, err)
	return ident
}

func TestSignInAndRoster(t *testing.T) {
	ctx := context.Background()
	f := newConsoleFixture(t)
	alice := f.seedUser(t, "alice@x.com", "Alice", rbac.RoleAdmin)
	f.seedUser(t, "bob@x.com", "Bob", rbac.RoleTenant)

	session, err := f.console.SignIn(ctx, "alice@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, alice.ID.String(), session.UID)
	assert.True(t, session.IsAdmin())

	roster, err := f.console.LoadRoster(ctx)
	require.NoError(t, err)
	assert.Len(t, roster, 2)

	// The admin's own row is read-only.
	assert.False(t, f.console.CanEdit(session.UID))
	for _, row := range roster {
		if row.UID != session.UID {
			assert.True(t, f.console.CanEdit(row.UID))
		}
	}
}

func TestNonAdminGetsNoRosterFetch(t *testing.T) {
	ctx := context.Background()
	f := newConsoleFixture(t)
	f.seedUser(t, "bob@x.com", "Bob", rbac.RoleTenant)

	_, err := f.console.SignIn(ctx, "bob@x.com", "secret")
	require.NoError(t, err)

	_, err = f.console.LoadRoster(ctx)
	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.Equal(t, int64(0), f.rosterCalls.Load(), "no request must reach the server")
}

func TestSignedOutRoster(t *testing.T) {
	f := newConsoleFixture(t)
	_, err := f.console.LoadRoster(context.Background())
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestAssignRoleRefreshesAndReloads(t *testing.T) {
	ctx := context.Background()
	f := newConsoleFixture(t)
	f.seedUser(t, "alice@x.com", "Alice", rbac.RoleAdmin)
	bob := f.seedUser(t, "bob@x.com", "Bob", rbac.RoleTenant)

	_, err := f.console.SignIn(ctx, "alice@x.com", "secret")
	require.NoError(t, err)
	_, err = f.console.LoadRoster(ctx)
	require.NoError(t, err)

	message, err := f.console.AssignRole(ctx, "bob@x.com", "manager")
	require.NoError(t, err)
	assert.Contains(t, message, "manager")

	// The session was refreshed before the call and the roster re-fetched
	// after it.
	assert.Equal(t, int64(1), f.refreshCalls.Load())
	assert.Equal(t, int64(2), f.rosterCalls.Load())

	var bobRow bool
	for _, row := range f.console.Roster() {
		if row.UID == bob.ID.String() {
			bobRow = true
			assert.Equal(t, "manager", row.Role)
		}
	}
	assert.True(t, bobRow)
}

func TestAssignRoleAfterRevocation(t *testing.T) {
	ctx := context.Background()
	f := newConsoleFixture(t)
	alice := f.seedUser(t, "alice@x.com", "Alice", rbac.RoleAdmin)
	f.seedUser(t, "bob@x.com", "Bob", rbac.RoleTenant)

	_, err := f.console.SignIn(ctx, "alice@x.com", "secret")
	require.NoError(t, err)

	// Admin role revoked after sign-in. The pre-call refresh picks up the
	// demotion, so the server rejects the mutation even though the original
	// access token still claimed admin.
	require.NoError(t, f.directory.SetRole(ctx, alice.ID, rbac.RoleTenant))

	_, err = f.console.AssignRole(ctx, "bob@x.com", "manager")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, admin.CodePermissionDenied, apiErr.Code)
}

func TestDeleteUserOptimisticRemoval(t *testing.T) {
	ctx := context.Background()
	f := newConsoleFixture(t)
	f.seedUser(t, "alice@x.com", "Alice", rbac.RoleAdmin)
	bob := f.seedUser(t, "bob@x.com", "Bob", rbac.RoleTenant)

	_, err := f.console.SignIn(ctx, "alice@x.com", "secret")
	require.NoError(t, err)
	_, err = f.console.LoadRoster(ctx)
	require.NoError(t, err)
	require.Len(t, f.console.Roster(), 2)

	rosterFetches := f.rosterCalls.Load()

	message, err := f.console.DeleteUser(ctx, bob.ID.String())
	require.NoError(t, err)
	assert.Contains(t, message, "deleted")

	// Row dropped locally without another roster fetch.
	assert.Equal(t, rosterFetches, f.rosterCalls.Load())
	for _, row := range f.console.Roster() {
		assert.NotEqual(t, bob.ID.String(), row.UID)
	}

	_, err = f.directory.GetByID(ctx, bob.ID)
	assert.ErrorIs(t, err, directory.ErrIdentityNotFound)
}

func TestDeleteSelfBlockedLocally(t *testing.T) {
	ctx := context.Background()
	f := newConsoleFixture(t)
	alice := f.seedUser(t, "alice@x.com", "Alice", rbac.RoleAdmin)

	_, err := f.console.SignIn(ctx, "alice@x.com", "secret")
	require.NoError(t, err)

	_, err = f.console.DeleteUser(ctx, alice.ID.String())
	assert.ErrorIs(t, err, ErrSelfAction)

	_, err = f.directory.GetByID(ctx, alice.ID)
	assert.NoError(t, err)
}

func TestSignOutTearsDownSession(t *testing.T) {
	ctx := context.Background()
	f := newConsoleFixture(t)
	f.seedUser(t, "alice@x.com", "Alice", rbac.RoleAdmin)

	_, err := f.console.SignIn(ctx, "alice@x.com", "secret")
	require.NoError(t, err)
	require.NotNil(t, f.console.Session())

	require.NoError(t, f.console.SignOut(ctx))
	assert.Nil(t, f.console.Session())
	assert.Empty(t, f.console.Roster())
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"permission", &APIError{Code: admin.CodePermissionDenied, Message: "nope"}, "You do not have permission to do that."},
		{"unauthenticated", &APIError{Code: admin.CodeUnauthenticated, Message: "nope"}, "You must be signed in to do that."},
		{"not found", &APIError{Code: admin.CodeNotFound, Message: "nope"}, "No matching user was found."},
		{"invalid", &APIError{Code: admin.CodeInvalidArgument, Message: "nope"}, "That request was not valid. Check the form and try again."},
		{"fallback", &APIError{Code: admin.CodeInternal, Message: "boom"}, "Error: boom"},
		{"plain error", errors.New("dial tcp: refused"), "Error: dial tcp: refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lettable/booking-admin/pkg/directory"
	"github.com/lettable/booking-admin/pkg/profile"
	"github.com/lettable/booking-admin/pkg/rbac"
)

type authFixture struct {
	server    *httptest.Server
	directory *directory.Service
	profiles  *profile.Service
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	directorySvc := directory.NewService(directory.NewInMemoryRepository())
	profileSvc := profile.NewService(profile.NewInMemoryRepository())
	tokenSvc := NewTokenService("test-secret", "test-issuer")

	handle := NewHandle(directorySvc, profileSvc, tokenSvc, WithSecureCookies(false))
	r := chi.NewRouter()
	handle.RegisterRoutes(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return &authFixture{server: server, directory: directorySvc, profiles: profileSvc}
}

func (f *authFixture) post(t *testing.T, path string, body interface{}) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(f.server.URL+path, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)

	resp, body := f.post(t, "/auth/register", map[string]string{
		"email":        "bob@x.com",
		"password":     "secret",
		"display_name": "Bob",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var role string
	require.NoError(t, json.Unmarshal(body["role"], &role))
	assert.Equal(t, "tenant", role)

	// Identity has no claims until the first assignment.
	ident, err := f.directory.GetByEmail(context.Background(), "bob@x.com")
	require.NoError(t, err)
	assert.False(t, ident.Claims.Assigned())

	// Profile record exists already.
	_, err = f.profiles.Get(context.Background(), ident.ID)
	assert.NoError(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)

	resp, _ := f.post(t, "/auth/register", map[string]string{"email": "bob@x.com", "password": "secret"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = f.post(t, "/auth/register", map[string]string{"email": "bob@x.com", "password": "other"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.directory.Register(context.Background(), "bob@x.com", "secret", "Bob")
	require.NoError(t, err)

	resp, body := f.post(t, "/auth/login", map[string]string{"email": "bob@x.com", "password": "secret"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])

	// First login created the profile record.
	ident, err := f.directory.GetByEmail(context.Background(), "bob@x.com")
	require.NoError(t, err)
	rec, err := f.profiles.Get(context.Background(), ident.ID)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleTenant, rec.Role)

	// Token cookies are set.
	names := map[string]bool{}
	for _, cookie := range resp.Cookies() {
		names[cookie.Name] = true
	}
	assert.True(t, names[AccessTokenName])
	assert.True(t, names[RefreshTokenName])
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.directory.Register(context.Background(), "bob@x.com", "secret", "Bob")
	require.NoError(t, err)

	resp, _ := f.post(t, "/auth/login", map[string]string{"email": "bob@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Unknown email answers identically.
	resp2, _ := f.post(t, "/auth/login", map[string]string{"email": "nobody@x.com", "password": "wrong"})
	assert.Equal(t, resp.StatusCode, resp2.StatusCode)
}

func TestRefreshPicksUpRoleChange(t *testing.T) {
	f := newAuthFixture(t)
	ident, err := f.directory.Register(context.Background(), "bob@x.com", "secret", "Bob")
	require.NoError(t, err)

	_, login := f.post(t, "/auth/login", map[string]string{"email": "bob@x.com", "password": "secret"})

	var refreshToken string
	require.NoError(t, json.Unmarshal(login["refresh_token"], &refreshToken))

	// Role changes after the tokens were minted.
	require.NoError(t, f.directory.SetRole(context.Background(), ident.ID, rbac.RoleManager))

	resp, body := f.post(t, "/auth/refresh", map[string]string{"refresh_token": refreshToken})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var accessToken string
	require.NoError(t, json.Unmarshal(body["access_token"], &accessToken))

	// The fresh access token carries the new claims.
	service := NewTokenService("test-secret", "test-issuer")
	token, err := service.JWTAuth().Decode(accessToken)
	require.NoError(t, err)
	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rbac.Claims{Manager: true}, rbac.ClaimsFromMap(claims))
}

func TestRefreshRejectsDeletedAccount(t *testing.T) {
	f := newAuthFixture(t)
	ident, err := f.directory.Register(context.Background(), "bob@x.com", "secret", "Bob")
	require.NoError(t, err)

	_, login := f.post(t, "/auth/login", map[string]string{"email": "bob@x.com", "password": "secret"})
	var refreshToken string
	require.NoError(t, json.Unmarshal(login["refresh_token"], &refreshToken))

	require.NoError(t, f.directory.Delete(context.Background(), ident.ID))

	resp, _ := f.post(t, "/auth/refresh", map[string]string{"refresh_token": refreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	f := newAuthFixture(t)

	resp, _ := f.post(t, "/auth/refresh", map[string]string{"refresh_token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.post(t, "/auth/refresh", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPasswordResetFlow(t *testing.T) {
	directorySvc := directory.NewService(directory.NewInMemoryRepository())
	profileSvc := profile.NewService(profile.NewInMemoryRepository())
	tokenSvc := NewTokenService("test-secret", "test-issuer")
	handle := NewHandle(directorySvc, profileSvc, tokenSvc, WithSecureCookies(false))

	ident, err := directorySvc.Register(context.Background(), "bob@x.com", "secret", "Bob")
	require.NoError(t, err)

	// Drive the store directly; mail delivery is covered by the notifier.
	token := handle.resets.Issue(ident.ID)

	r := chi.NewRouter()
	handle.RegisterRoutes(r)
	server := httptest.NewServer(r)
	defer server.Close()

	buf, _ := json.Marshal(map[string]string{"token": token, "new_password": "changed"})
	resp, err := http.Post(server.URL+"/auth/password-reset/confirm", "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = directorySvc.Authenticate(context.Background(), "bob@x.com", "changed")
	assert.NoError(t, err)
	_, err = directorySvc.Authenticate(context.Background(), "bob@x.com", "secret")
	assert.ErrorIs(t, err, directory.ErrInvalidCredentials)
}

func TestPasswordResetAlwaysGeneric(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.directory.Register(context.Background(), "bob@x.com", "secret", "Bob")
	require.NoError(t, err)

	resp1, body1 := f.post(t, "/auth/password-reset", map[string]string{"email": "bob@x.com"})
	resp2, body2 := f.post(t, "/auth/password-reset", map[string]string{"email": "nobody@x.com"})

	// Response does not reveal whether the email is registered.
	assert.Equal(t, http.StatusOK, resp1.StatusCode)
	assert.Equal(t, resp1.StatusCode, resp2.StatusCode)
	assert.Equal(t, string(body1["message"]), string(body2["message"]))
}

func TestCallerMiddleware(t *testing.T) {
	id := uuid.New()
	ctx := WithCaller(context.Background(), &Caller{ID: id, Claims: rbac.RoleAdmin.Claims(), Role: rbac.RoleAdmin})

	caller := CallerFromContext(ctx)
	require.NotNil(t, caller)
	assert.Equal(t, id, caller.ID)
	assert.True(t, caller.IsAdmin())

	assert.Nil(t, CallerFromContext(context.Background()))

	var nilCaller *Caller
	assert.False(t, nilCaller.IsAdmin())
}

func TestLogoutClearsCookies(t *testing.T) {
	f := newAuthFixture(t)

	resp, _ := f.post(t, "/auth/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cleared := 0
	for _, cookie := range resp.Cookies() {
		if cookie.Name == AccessTokenName || cookie.Name == RefreshTokenName {
			assert.True(t, cookie.MaxAge < 0 || cookie.Value == "")
			cleared++
		}
	}
	assert.Equal(t, 2, cleared)
}

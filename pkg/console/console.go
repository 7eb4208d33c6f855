package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/lettable/booking-admin/pkg/admin"
	adminapi "github.com/lettable/booking-admin/pkg/admin/api"
	"github.com/lettable/booking-admin/pkg/rbac"
)

var (
	ErrNotSignedIn = errors.New("not signed in")
	ErrNotAdmin    = errors.New("signed-in user is not an admin")
	ErrBusy        = errors.New("an operation is already in flight")
	ErrSelfAction  = errors.New("cannot modify your own account")
)

// Session is the signed-in user's state. It is created by SignIn and torn
// down by SignOut; views receive it by reference instead of reading ambient
// globals.
type Session struct {
	UID          string
	Email        string
	DisplayName  string
	Role         rbac.Role
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// IsAdmin reports whether the session belongs to an admin.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == rbac.RoleAdmin
}

// Console is a client for the administration API. It mirrors the admin
// screen's behavior: refresh the session before every privileged call so the
// token carries current claims, re-fetch the roster after an assignment, and
// remove a deleted row optimistically.
type Console struct {
	baseURL string
	http    *http.Client

	// inflight serializes mutations the way the UI disables its controls
	// while a call is outstanding.
	inflight sync.Mutex

	mu      sync.RWMutex
	session *Session
	roster  []adminapi.UserResponse
}

// Option is a function that configures a Console.
type Option func(*Console)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Console) {
		c.http = client
	}
}

// New creates a console client for the given server.
func New(baseURL string, options ...Option) *Console {
	c := &Console{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

type apiError struct {
	Error struct {
		Code    admin.Code `json:"code"`
		Message string     `json:"message"`
	} `json:"error"`
}

// userMessages are the fixed strings shown for each failure code. Unmapped
// codes fall back to "Error: <message>".
var userMessages = map[admin.Code]string{
	admin.CodeUnauthenticated:  "You must be signed in to do that.",
	admin.CodePermissionDenied: "You do not have permission to do that.",
	admin.CodeInvalidArgument:  "That request was not valid. Check the form and try again.",
	admin.CodeNotFound:         "No matching user was found.",
}

// UserMessage converts an API failure into the string shown to the operator.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg, ok := userMessages[apiErr.Code]; ok {
			return msg
		}
		return fmt.Sprintf("Error: %s", apiErr.Message)
	}
	return fmt.Sprintf("Error: %v", err)
}

// APIError is a failure response from the server.
type APIError struct {
	Code    admin.Code
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (c *Console) post(ctx context.Context, path, token string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}

func (c *Console) get(ctx context.Context, path, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}

func (c *Console) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Code != "" {
			return &APIError{Code: apiErr.Error.Code, Message: apiErr.Error.Message}
		}
		// Auth endpoints use a flat {"error": "..."} shape.
		return &APIError{Code: admin.CodeInternal, Message: http.StatusText(resp.StatusCode)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		Role        string `json:"role"`
	} `json:"user"`
}

func sessionFrom(resp tokenResponse) *Session {
	return &Session{
		UID:          resp.User.ID,
		Email:        resp.User.Email,
		DisplayName:  resp.User.DisplayName,
		Role:         rbac.Role(resp.User.Role),
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    resp.ExpiresAt,
	}
}

// SignIn authenticates and initializes the session.
func (c *Console) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var resp tokenResponse
	err := c.post(ctx, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}

	session := sessionFrom(resp)
	c.mu.Lock()
	c.session = session
	c.roster = nil
	c.mu.Unlock()
	return session, nil
}

// SignOut tears down the session.
func (c *Console) SignOut(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.roster = nil
	c.mu.Unlock()

	if session == nil {
		return nil
	}
	return c.post(ctx, "/auth/logout", session.AccessToken, nil, nil)
}

// Session returns the current session, or nil when signed out.
func (c *Console) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// refreshSession redeems the refresh token so the access token carries the
// directory's current claims. Called before every privileged operation; a
// role revoked since sign-in takes effect here rather than at token expiry.
func (c *Console) refreshSession(ctx context.Context) (*Session, error) {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if session == nil {
		return nil, ErrNotSignedIn
	}

	var resp tokenResponse
	err := c.post(ctx, "/auth/refresh", "", map[string]string{
		"refresh_token": session.RefreshToken,
	}, &resp)
	if err != nil {
		return nil, err
	}

	fresh := sessionFrom(resp)
	c.mu.Lock()
	c.session = fresh
	c.mu.Unlock()
	return fresh, nil
}

// LoadRoster fetches the full user roster. Non-admin sessions are rejected
// locally without touching the server.
func (c *Console) LoadRoster(ctx context.Context) ([]adminapi.UserResponse, error) {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if session == nil {
		return nil, ErrNotSignedIn
	}
	if !session.IsAdmin() {
		return nil, ErrNotAdmin
	}

	var resp struct {
		Users []adminapi.UserResponse `json:"users"`
	}
	if err := c.get(ctx, "/api/admin/users", session.AccessToken, &resp); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.roster = resp.Users
	c.mu.Unlock()
	return resp.Users, nil
}

// Roster returns the last fetched roster.
func (c *Console) Roster() []adminapi.UserResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]adminapi.UserResponse, len(c.roster))
	copy(out, c.roster)
	return out
}

// CanEdit reports whether the row's controls are enabled. The signed-in
// admin's own row is read-only, mirroring the server's self-deletion block.
func (c *Console) CanEdit(uid string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session != nil && c.session.UID != uid
}

// AssignRole sets a user's role by email, then re-fetches the full roster
// rather than patching local state.
func (c *Console) AssignRole(ctx context.Context, email, role string) (string, error) {
	if !c.inflight.TryLock() {
		return "", ErrBusy
	}
	defer c.inflight.Unlock()

	session, err := c.refreshSession(ctx)
	if err != nil {
		return "", err
	}

	var resp struct {
		Message string `json:"message"`
	}
	err = c.post(ctx, "/api/admin/assign-role", session.AccessToken, map[string]string{
		"email":   email,
		"newRole": role,
	}, &resp)
	if err != nil {
		return "", err
	}

	// The assignment already succeeded; a failed re-fetch just leaves the
	// table stale until the next load.
	_, _ = c.LoadRoster(ctx)
	return resp.Message, nil
}

// DeleteUser removes a user's account and optimistically drops the row from
// the local roster.
func (c *Console) DeleteUser(ctx context.Context, uid string) (string, error) {
	if !c.inflight.TryLock() {
		return "", ErrBusy
	}
	defer c.inflight.Unlock()

	session, err := c.refreshSession(ctx)
	if err != nil {
		return "", err
	}
	if session.UID == uid {
		return "", ErrSelfAction
	}

	var resp struct {
		Message string `json:"message"`
	}
	err = c.post(ctx, "/api/admin/delete-account", session.AccessToken, map[string]string{
		"uid": uid,
	}, &resp)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	kept := c.roster[:0]
	for _, row := range c.roster {
		if row.UID != uid {
			kept = append(kept, row)
		}
	}
	c.roster = kept
	c.mu.Unlock()
	return resp.Message, nil
}

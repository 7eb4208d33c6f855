package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/lettable/booking-admin/pkg/directory"
	"github.com/lettable/booking-admin/pkg/notify"
	"github.com/lettable/booking-admin/pkg/profile"
)

// Handle serves the authentication endpoints.
type Handle struct {
	directory    *directory.Service
	profiles     *profile.Service
	tokens       *TokenService
	notifier     notify.Sender
	resets       *ResetTokenStore
	frontendURL  string
	cookieSecure bool
}

// Option is a function that configures a Handle.
type Option func(*Handle)

// WithNotifier sets the sender used for password reset mail.
func WithNotifier(sender notify.Sender) Option {
	return func(h *Handle) {
		h.notifier = sender
	}
}

// WithFrontendURL sets the base URL used in password reset links.
func WithFrontendURL(url string) Option {
	return func(h *Handle) {
		h.frontendURL = url
	}
}

// WithSecureCookies controls the Secure attribute on token cookies.
func WithSecureCookies(secure bool) Option {
	return func(h *Handle) {
		h.cookieSecure = secure
	}
}

// NewHandle creates the authentication handler.
func NewHandle(directorySvc *directory.Service, profileSvc *profile.Service, tokens *TokenService, options ...Option) *Handle {
	h := &Handle{
		directory:    directorySvc,
		profiles:     profileSvc,
		tokens:       tokens,
		notifier:     notify.NoOpSender{},
		resets:       NewResetTokenStore(DefaultResetTokenTTL),
		frontendURL:  "http://localhost:3000",
		cookieSecure: true,
	}
	for _, option := range options {
		option(h)
	}
	return h
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         userResponse `json:"user"`
}

func (h *Handle) respondError(w http.ResponseWriter, r *http.Request, code int, message string) {
	render.Status(r, code)
	render.JSON(w, r, map[string]string{"error": message})
}

// Register creates a new identity with no claims and a tenant profile
// record.
// (POST /auth/register)
func (h *Handle) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		h.respondError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	ident, err := h.directory.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, directory.ErrEmailTaken) {
			h.respondError(w, r, http.StatusConflict, "email already registered")
			return
		}
		slog.Error("Registration failed", "email", req.Email, "err", err)
		h.respondError(w, r, http.StatusInternalServerError, "failed to register")
		return
	}

	rec, err := h.profiles.EnsureRecord(r.Context(), ident.ID, ident.Email, ident.DisplayName)
	if err != nil {
		// Identity exists but the profile write failed; first login repairs this.
		slog.Error("Profile creation failed after registration", "userId", ident.ID, "err", err)
		h.respondError(w, r, http.StatusInternalServerError, "failed to create profile")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, userResponse{
		ID:          ident.ID.String(),
		Email:       ident.Email,
		DisplayName: ident.DisplayName,
		Role:        rec.Role.String(),
	})
}

// Login verifies credentials, creates the profile record on first login and
// issues tokens carrying the identity's current claims.
// (POST /auth/login)
func (h *Handle) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	ident, err := h.directory.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, directory.ErrInvalidCredentials) {
			h.respondError(w, r, http.StatusUnauthorized, "invalid email or password")
			return
		}
		slog.Error("Login failed", "email", req.Email, "err", err)
		h.respondError(w, r, http.StatusInternalServerError, "login failed")
		return
	}

	rec, err := h.profiles.EnsureRecord(r.Context(), ident.ID, ident.Email, ident.DisplayName)
	if err != nil {
		slog.Error("Profile lookup failed during login", "userId", ident.ID, "err", err)
		h.respondError(w, r, http.StatusInternalServerError, "login failed")
		return
	}

	h.issueTokens(w, r, ident, rec)
}

// Refresh redeems a refresh token for a fresh access token. Claims are
// re-read from the directory, so a role change made since the last mint is
// reflected immediately. This is what the console calls before every
// privileged operation.
// (POST /auth/refresh)
func (h *Handle) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	// Body is optional; the cookie is the fallback.
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.RefreshToken == "" {
		if cookie, err := r.Cookie(RefreshTokenName); err == nil {
			req.RefreshToken = cookie.Value
		}
	}
	if req.RefreshToken == "" {
		h.respondError(w, r, http.StatusUnauthorized, "missing refresh token")
		return
	}

	userID, err := h.tokens.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		h.respondError(w, r, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	ident, err := h.directory.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, directory.ErrIdentityNotFound) {
			h.respondError(w, r, http.StatusUnauthorized, "account no longer exists")
			return
		}
		slog.Error("Identity lookup failed during refresh", "userId", userID, "err", err)
		h.respondError(w, r, http.StatusInternalServerError, "refresh failed")
		return
	}

	rec, err := h.profiles.EnsureRecord(r.Context(), ident.ID, ident.Email, ident.DisplayName)
	if err != nil {
		slog.Error("Profile lookup failed during refresh", "userId", ident.ID, "err", err)
		h.respondError(w, r, http.StatusInternalServerError, "refresh failed")
		return
	}

	h.issueTokens(w, r, ident, rec)
}

// Logout clears the token cookies. The tokens themselves stay valid until
// expiry; there is no server-side session to revoke.
// (POST /auth/logout)
func (h *Handle) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, AccessTokenName)
	h.clearCookie(w, RefreshTokenName)
	render.JSON(w, r, map[string]string{"message": "signed out"})
}

// PasswordReset issues a reset token and emails a link. The response is the
// same whether or not the email is registered.
// (POST /auth/password-reset)
func (h *Handle) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		h.respondError(w, r, http.StatusBadRequest, "email is required")
		return
	}

	if ident, err := h.directory.GetByEmail(r.Context(), req.Email); err == nil {
		token := h.resets.Issue(ident.ID)
		link := fmt.Sprintf("%s/password-reset?token=%s", h.frontendURL, token)
		if err := h.notifier.SendPasswordReset(r.Context(), ident.Email, link); err != nil {
			slog.Error("Failed to deliver password reset mail", "email", ident.Email, "err", err)
		}
	}

	render.JSON(w, r, map[string]string{"message": "if that email is registered, a reset link has been sent"})
}

// PasswordResetConfirm redeems a reset token and sets the new password.
// (POST /auth/password-reset/confirm)
func (h *Handle) PasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		h.respondError(w, r, http.StatusBadRequest, "token and new_password are required")
		return
	}

	userID, err := h.resets.Consume(req.Token)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "reset token is invalid or expired")
		return
	}

	if err := h.directory.SetPassword(r.Context(), userID, req.NewPassword); err != nil {
		slog.Error("Failed to set new password", "userId", userID, "err", err)
		h.respondError(w, r, http.StatusInternalServerError, "failed to set new password")
		return
	}

	render.JSON(w, r, map[string]string{"message": "password updated"})
}

func (h *Handle) issueTokens(w http.ResponseWriter, r *http.Request, ident directory.Identity, rec profile.Record) {
	accessToken, expiresAt, err := h.tokens.GenerateAccessToken(ident)
	if err != nil {
		slog.Error("Failed to mint access token", "userId", ident.ID, "err", err)
		h.respondError(w, r, http.StatusInternalServerError, "failed to issue token")
		return
	}
	refreshToken, refreshExpiry, err := h.tokens.GenerateRefreshToken(ident)
	if err != nil {
		slog.Error("Failed to mint refresh token", "userId", ident.ID, "err", err)
		h.respondError(w, r, http.StatusInternalServerError, "failed to issue token")
		return
	}

	h.setCookie(w, AccessTokenName, accessToken, expiresAt)
	h.setCookie(w, RefreshTokenName, refreshToken, refreshExpiry)

	render.JSON(w, r, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User: userResponse{
			ID:          ident.ID.String(),
			Email:       ident.Email,
			DisplayName: ident.DisplayName,
			Role:        rec.Role.String(),
		},
	})
}

func (h *Handle) setCookie(w http.ResponseWriter, name, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handle) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

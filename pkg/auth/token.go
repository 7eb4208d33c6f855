package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lettable/booking-admin/pkg/directory"
)

// Token names used for cookies and request fields.
const (
	AccessTokenName  = "access_token"
	RefreshTokenName = "refresh_token"
)

// Default token expiry durations
const (
	DefaultAccessTokenExpiry  = 15 * time.Minute
	DefaultRefreshTokenExpiry = 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

// TokenService mints and parses identity tokens.
type TokenService struct {
	secret        []byte
	issuer        string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	jwtAuth       *jwtauth.JWTAuth
}

// TokenOption is a function that configures a TokenService.
type TokenOption func(*TokenService)

// WithAccessTokenExpiry sets the access token expiry duration.
func WithAccessTokenExpiry(expiry time.Duration) TokenOption {
	return func(s *TokenService) {
		s.accessExpiry = expiry
	}
}

// WithRefreshTokenExpiry sets the refresh token expiry duration.
func WithRefreshTokenExpiry(expiry time.Duration) TokenOption {
	return func(s *TokenService) {
		s.refreshExpiry = expiry
	}
}

// NewTokenService creates a new token service signing with the given HMAC
// secret.
func NewTokenService(secret, issuer string, options ...TokenOption) *TokenService {
	s := &TokenService{
		secret:        []byte(secret),
		issuer:        issuer,
		accessExpiry:  DefaultAccessTokenExpiry,
		refreshExpiry: DefaultRefreshTokenExpiry,
		jwtAuth:       jwtauth.New("HS256", []byte(secret), nil),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// JWTAuth returns the verifier used by the router middleware.
func (s *TokenService) JWTAuth() *jwtauth.JWTAuth {
	return s.jwtAuth
}

// GenerateAccessToken mints an access token carrying the identity's current
// claim flags.
func (s *TokenService) GenerateAccessToken(ident directory.Identity) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.accessExpiry)
	claims := jwt.MapClaims{
		"iss":       s.issuer,
		"sub":       ident.ID.String(),
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
		"token_use": "access",
		"email":     ident.Email,
		"name":      ident.DisplayName,
		"admin":     ident.Claims.Admin,
		"manager":   ident.Claims.Manager,
		"staff":     ident.Claims.Staff,
		"tenant":    ident.Claims.Tenant,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// GenerateRefreshToken mints a refresh token. It carries no role claims;
// claims are re-read from the directory when the token is redeemed.
func (s *TokenService) GenerateRefreshToken(ident directory.Identity) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.refreshExpiry)
	claims := jwt.MapClaims{
		"iss":       s.issuer,
		"sub":       ident.ID.String(),
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
		"token_use": "refresh",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseRefreshToken validates a refresh token and returns the subject id.
func (s *TokenService) ParseRefreshToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["token_use"] != "refresh" {
		return uuid.Nil, fmt.Errorf("%w: not a refresh token", ErrInvalidToken)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed subject", ErrInvalidToken)
	}
	return id, nil
}

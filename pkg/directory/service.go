package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lettable/booking-admin/pkg/rbac"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Service provides identity provider operations.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new identity with hashed credentials and no claims.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (Identity, error) {
	if email == "" {
		return Identity{}, fmt.Errorf("email is required")
	}
	if password == "" {
		return Identity{}, fmt.Errorf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}

	ident, err := s.repo.Create(ctx, CreateIdentityParams{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
	})
	if err != nil {
		return Identity{}, err
	}

	slog.Info("Registered identity", "id", ident.ID, "email", ident.Email)
	return ident, nil
}

// Authenticate verifies credentials and returns the matching identity.
// The same error is returned for unknown emails and wrong passwords.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	ident, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, err
	}

	if err := bcrypt.CompareHashAndPassword(ident.PasswordHash, []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return ident, nil
}

// GetByEmail resolves an email address to an identity.
func (s *Service) GetByEmail(ctx context.Context, email string) (Identity, error) {
	return s.repo.GetByEmail(ctx, email)
}

// GetByID looks up an identity by id.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Identity, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all identities.
func (s *Service) List(ctx context.Context) ([]Identity, error) {
	return s.repo.List(ctx)
}

// SetRole rewrites the identity's claims to exactly one true flag matching
// the given role.
func (s *Service) SetRole(ctx context.Context, id uuid.UUID, role rbac.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", rbac.ErrUnknownRole, role)
	}
	return s.repo.SetClaims(ctx, id, role.Claims())
}

// SetPassword hashes and stores a new password for the identity.
func (s *Service) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}

// Delete removes the identity and its credentials.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/lettable/booking-admin/pkg/rbac"
)

// Common errors
var (
	ErrIdentityNotFound = errors.New("identity not found")
	ErrEmailTaken       = errors.New("email already registered")
)

// Repository defines the storage interface for identities.
type Repository interface {
	Create(ctx context.Context, params CreateIdentityParams) (Identity, error)
	GetByID(ctx context.Context, id uuid.UUID) (Identity, error)
	GetByEmail(ctx context.Context, email string) (Identity, error)
	List(ctx context.Context) ([]Identity, error)
	SetClaims(ctx context.Context, id uuid.UUID, claims rbac.Claims) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash []byte) error
	Delete(ctx context.Context, id uuid.UUID) error
}

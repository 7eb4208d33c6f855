package directory

import (
	"time"

	"github.com/google/uuid"

	"github.com/lettable/booking-admin/pkg/rbac"
)

// Identity is a registered user as known to the identity provider.
type Identity struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	DisplayName  string      `json:"display_name,omitempty"`
	PasswordHash []byte      `json:"-"`
	Claims       rbac.Claims `json:"claims"`
	CreatedAt    time.Time   `json:"created_at"`
	// ClaimsUpdatedAt is zero until the first role assignment.
	ClaimsUpdatedAt time.Time `json:"claims_updated_at,omitempty"`
}

// CreateIdentityParams contains parameters for registering a new identity.
type CreateIdentityParams struct {
	Email        string
	DisplayName  string
	PasswordHash []byte
}

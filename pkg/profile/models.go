package profile

import (
	"time"

	"github.com/google/uuid"

	"github.com/lettable/booking-admin/pkg/rbac"
)

// Record is a user's profile document.
type Record struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        rbac.Role `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// UpsertParams contains the fields to merge into a user's record. Nil fields
// are left untouched on existing records; last_updated is always refreshed
// by the store.
type UpsertParams struct {
	UserID      uuid.UUID
	Email       *string
	DisplayName *string
	Role        *rbac.Role
}

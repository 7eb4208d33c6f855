package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrRecordNotFound = errors.New("profile record not found")

// Repository defines the storage interface for profile records.
type Repository interface {
	// Upsert creates the record if absent, otherwise merges the non-nil
	// fields into it. The store assigns last_updated.
	Upsert(ctx context.Context, params UpsertParams) (Record, error)
	Get(ctx context.Context, userID uuid.UUID) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

package booking

import (
	"context"

	"github.com/google/uuid"
)

// PropertyRepository persists properties.
type PropertyRepository interface {
	Create(ctx context.Context, params CreatePropertyParams) (Property, error)
	Get(ctx context.Context, id uuid.UUID) (Property, error)
	List(ctx context.Context) ([]Property, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BookingRepository persists bookings.
type BookingRepository interface {
	Create(ctx context.Context, params CreateBookingParams) (Booking, error)
	Get(ctx context.Context, id uuid.UUID) (Booking, error)
	List(ctx context.Context) ([]Booking, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Booking, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) (Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrUnknownStatus    = errors.New("unknown booking status")
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus converts a string to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

func (s Status) String() string {
	return string(s)
}

// Property is a rentable unit.
type Property struct {
	ID        uuid.UUID
	Name      string
	Address   string
	CreatedAt time.Time
}

// Booking ties a tenant to a property over a date range.
type Booking struct {
	ID          uuid.UUID
	PropertyID  uuid.UUID
	TenantID    uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
	Status      Status
	Notes       string
	CreatedAt   time.Time
	LastUpdated time.Time
}

// CreatePropertyParams carries the fields for a new property.
type CreatePropertyParams struct {
	Name    string
	Address string
}

// CreateBookingParams carries the fields for a new booking. New bookings
// start pending.
type CreateBookingParams struct {
	PropertyID uuid.UUID
	TenantID   uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
	Notes      string
}

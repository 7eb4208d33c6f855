package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lettable/booking-admin/pkg/admin"
	"github.com/lettable/booking-admin/pkg/auth"
)

// Service provides role-gated access to properties and bookings.
type Service struct {
	properties PropertyRepository
	bookings   BookingRepository
}

// NewService creates the booking service.
func NewService(properties PropertyRepository, bookings BookingRepository) *Service {
	return &Service{properties: properties, bookings: bookings}
}

// CreateProperty adds a property. Admins and managers only.
func (s *Service) CreateProperty(ctx context.Context, caller *auth.Caller, params CreatePropertyParams) (Property, error) {
	if caller == nil {
		return Property{}, admin.Unauthenticated()
	}
	if !caller.Role.CanManageBookings() {
		return Property{}, admin.PermissionDenied("only admins and managers can manage properties")
	}
	if params.Name == "" {
		return Property{}, admin.InvalidArgument("property name is required")
	}

	prop, err := s.properties.Create(ctx, params)
	if err != nil {
		return Property{}, admin.Internal("failed to create property", err)
	}
	slog.Info("Created property", "propertyId", prop.ID, "name", prop.Name, "by", caller.ID)
	return prop, nil
}

// ListProperties returns all properties. Any authenticated user may browse.
func (s *Service) ListProperties(ctx context.Context, caller *auth.Caller) ([]Property, error) {
	if caller == nil {
		return nil, admin.Unauthenticated()
	}
	props, err := s.properties.List(ctx)
	if err != nil {
		return nil, admin.Internal("failed to list properties", err)
	}
	return props, nil
}

// DeleteProperty removes a property. Admins and managers only.
func (s *Service) DeleteProperty(ctx context.Context, caller *auth.Caller, id uuid.UUID) error {
	if caller == nil {
		return admin.Unauthenticated()
	}
	if !caller.Role.CanManageBookings() {
		return admin.PermissionDenied("only admins and managers can manage properties")
	}

	if err := s.properties.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrPropertyNotFound) {
			return admin.NotFound("property does not exist")
		}
		return admin.Internal("failed to delete property", err)
	}
	return nil
}

// CreateBooking records a new pending booking. Tenants may only book for
// themselves; admins and managers may book on any tenant's behalf.
func (s *Service) CreateBooking(ctx context.Context, caller *auth.Caller, params CreateBookingParams) (Booking, error) {
	if caller == nil {
		return Booking{}, admin.Unauthenticated()
	}
	if params.TenantID != caller.ID && !caller.Role.CanManageBookings() {
		return Booking{}, admin.PermissionDenied("tenants can only book for themselves")
	}
	if !params.EndDate.After(params.StartDate) {
		return Booking{}, admin.InvalidArgument("end date must be after start date")
	}

	if _, err := s.properties.Get(ctx, params.PropertyID); err != nil {
		if errors.Is(err, ErrPropertyNotFound) {
			return Booking{}, admin.NotFound("property does not exist")
		}
		return Booking{}, admin.Internal("failed to look up property", err)
	}

	b, err := s.bookings.Create(ctx, params)
	if err != nil {
		return Booking{}, admin.Internal("failed to create booking", err)
	}
	slog.Info("Created booking", "bookingId", b.ID, "propertyId", b.PropertyID, "tenantId", b.TenantID)
	return b, nil
}

// ListBookings returns the bookings visible to the caller: the whole book
// for admins, managers and staff, the caller's own for tenants.
func (s *Service) ListBookings(ctx context.Context, caller *auth.Caller) ([]Booking, error) {
	if caller == nil {
		return nil, admin.Unauthenticated()
	}

	var (
		result []Booking
		err    error
	)
	if caller.Role.CanViewAllBookings() {
		result, err = s.bookings.List(ctx)
	} else {
		result, err = s.bookings.ListByTenant(ctx, caller.ID)
	}
	if err != nil {
		return nil, admin.Internal("failed to list bookings", err)
	}
	return result, nil
}

// GetBooking returns one booking if the caller may see it.
func (s *Service) GetBooking(ctx context.Context, caller *auth.Caller, id uuid.UUID) (Booking, error) {
	if caller == nil {
		return Booking{}, admin.Unauthenticated()
	}

	b, err := s.bookings.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return Booking{}, admin.NotFound("booking does not exist")
		}
		return Booking{}, admin.Internal("failed to look up booking", err)
	}
	if b.TenantID != caller.ID && !caller.Role.CanViewAllBookings() {
		return Booking{}, admin.PermissionDenied("booking belongs to another tenant")
	}
	return b, nil
}

// SetBookingStatus moves a booking through its lifecycle. Admins and
// managers set any status; a tenant may only cancel their own booking.
func (s *Service) SetBookingStatus(ctx context.Context, caller *auth.Caller, id uuid.UUID, status Status) (Booking, error) {
	if caller == nil {
		return Booking{}, admin.Unauthenticated()
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return Booking{}, admin.InvalidArgument(fmt.Sprintf("unknown status %q", status))
	}

	b, err := s.bookings.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return Booking{}, admin.NotFound("booking does not exist")
		}
		return Booking{}, admin.Internal("failed to look up booking", err)
	}

	if !caller.Role.CanManageBookings() {
		if b.TenantID != caller.ID || status != StatusCancelled {
			return Booking{}, admin.PermissionDenied("tenants can only cancel their own bookings")
		}
	}

	b, err = s.bookings.SetStatus(ctx, id, status)
	if err != nil {
		return Booking{}, admin.Internal("failed to update booking", err)
	}
	slog.Info("Updated booking status", "bookingId", b.ID, "status", b.Status, "by", caller.ID)
	return b, nil
}

// DeleteBooking removes a booking. Admins and managers only.
func (s *Service) DeleteBooking(ctx context.Context, caller *auth.Caller, id uuid.UUID) error {
	if caller == nil {
		return admin.Unauthenticated()
	}
	if !caller.Role.CanManageBookings() {
		return admin.PermissionDenied("only admins and managers can delete bookings")
	}

	if err := s.bookings.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return admin.NotFound("booking does not exist")
		}
		return admin.Internal("failed to delete booking", err)
	}
	return nil
}

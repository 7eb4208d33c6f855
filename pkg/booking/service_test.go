package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lettable/booking-admin/pkg/admin"
	"github.com/lettable/booking-admin/pkg/auth"
	"github.com/lettable/booking-admin/pkg/rbac"
)

func caller(role rbac.Role) *auth.Caller {
	return &auth.Caller{ID: uuid.New(), Claims: role.Claims(), Role: role}
}

func newService() *Service {
	return NewService(NewInMemoryPropertyRepository(), NewInMemoryBookingRepository())
}

func seedProperty(t *testing.T, s *Service) Property {
	t.Helper()
	prop, err := s.CreateProperty(context.Background(), caller(rbac.RoleManager), CreatePropertyParams{
		Name:    "Elm Street 4",
		Address: "4 Elm Street",
	})
	require.NoError(t, err)
	return prop
}

func bookingParams(prop Property, tenantID uuid.UUID) CreateBookingParams {
	start := time.Now().Add(24 * time.Hour)
	return CreateBookingParams{
		PropertyID: prop.ID,
		TenantID:   tenantID,
		StartDate:  start,
		EndDate:    start.Add(7 * 24 * time.Hour),
	}
}

func TestCreateProperty(t *testing.T) {
	ctx := context.Background()
	s := newService()

	_, err := s.CreateProperty(ctx, nil, CreatePropertyParams{Name: "x"})
	assert.Equal(t, admin.CodeUnauthenticated, admin.CodeOf(err))

	_, err = s.CreateProperty(ctx, caller(rbac.RoleTenant), CreatePropertyParams{Name: "x"})
	assert.Equal(t, admin.CodePermissionDenied, admin.CodeOf(err))

	_, err = s.CreateProperty(ctx, caller(rbac.RoleStaff), CreatePropertyParams{Name: "x"})
	assert.Equal(t, admin.CodePermissionDenied, admin.CodeOf(err))

	_, err = s.CreateProperty(ctx, caller(rbac.RoleManager), CreatePropertyParams{})
	assert.Equal(t, admin.CodeInvalidArgument, admin.CodeOf(err))

	prop, err := s.CreateProperty(ctx, caller(rbac.RoleAdmin), CreatePropertyParams{Name: "Elm Street 4"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, prop.ID)
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()
	s := newService()
	prop := seedProperty(t, s)
	tenant := caller(rbac.RoleTenant)

	b, err := s.CreateBooking(ctx, tenant, bookingParams(prop, tenant.ID))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, tenant.ID, b.TenantID)

	// Tenants cannot book on someone else's behalf.
	_, err = s.CreateBooking(ctx, tenant, bookingParams(prop, uuid.New()))
	assert.Equal(t, admin.CodePermissionDenied, admin.CodeOf(err))

	// Managers can.
	otherTenant := uuid.New()
	b, err = s.CreateBooking(ctx, caller(rbac.RoleManager), bookingParams(prop, otherTenant))
	require.NoError(t, err)
	assert.Equal(t, otherTenant, b.TenantID)

	// Dates must be ordered.
	params := bookingParams(prop, tenant.ID)
	params.EndDate = params.StartDate
	_, err = s.CreateBooking(ctx, tenant, params)
	assert.Equal(t, admin.CodeInvalidArgument, admin.CodeOf(err))

	// Property must exist.
	params = bookingParams(Property{ID: uuid.New()}, tenant.ID)
	_, err = s.CreateBooking(ctx, tenant, params)
	assert.Equal(t, admin.CodeNotFound, admin.CodeOf(err))
}

func TestListBookingsVisibility(t *testing.T) {
	ctx := context.Background()
	s := newService()
	prop := seedProperty(t, s)

	tenantA := caller(rbac.RoleTenant)
	tenantB := caller(rbac.RoleTenant)
	_, err := s.CreateBooking(ctx, tenantA, bookingParams(prop, tenantA.ID))
	require.NoError(t, err)
	_, err = s.CreateBooking(ctx, tenantB, bookingParams(prop, tenantB.ID))
	require.NoError(t, err)

	// Staff see everything.
	all, err := s.ListBookings(ctx, caller(rbac.RoleStaff))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Tenants see only their own.
	own, err := s.ListBookings(ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, tenantA.ID, own[0].TenantID)

	_, err = s.ListBookings(ctx, nil)
	assert.Equal(t, admin.CodeUnauthenticated, admin.CodeOf(err))
}

func TestGetBookingOwnership(t *testing.T) {
	ctx := context.Background()
	s := newService()
	prop := seedProperty(t, s)
	tenant := caller(rbac.RoleTenant)

	b, err := s.CreateBooking(ctx, tenant, bookingParams(prop, tenant.ID))
	require.NoError(t, err)

	// Owner and staff may read it, another tenant may not.
	_, err = s.GetBooking(ctx, tenant, b.ID)
	assert.NoError(t, err)
	_, err = s.GetBooking(ctx, caller(rbac.RoleStaff), b.ID)
	assert.NoError(t, err)
	_, err = s.GetBooking(ctx, caller(rbac.RoleTenant), b.ID)
	assert.Equal(t, admin.CodePermissionDenied, admin.CodeOf(err))

	_, err = s.GetBooking(ctx, tenant, uuid.New())
	assert.Equal(t, admin.CodeNotFound, admin.CodeOf(err))
}

func TestSetBookingStatus(t *testing.T) {
	ctx := context.Background()
	s := newService()
	prop := seedProperty(t, s)
	tenant := caller(rbac.RoleTenant)

	b, err := s.CreateBooking(ctx, tenant, bookingParams(prop, tenant.ID))
	require.NoError(t, err)

	// Managers confirm.
	b2, err := s.SetBookingStatus(ctx, caller(rbac.RoleManager), b.ID, StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b2.Status)

	// Tenants may cancel their own booking but not confirm it.
	_, err = s.SetBookingStatus(ctx, tenant, b.ID, StatusConfirmed)
	assert.Equal(t, admin.CodePermissionDenied, admin.CodeOf(err))
	b2, err = s.SetBookingStatus(ctx, tenant, b.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, b2.Status)

	// Another tenant may not touch it.
	_, err = s.SetBookingStatus(ctx, caller(rbac.RoleTenant), b.ID, StatusCancelled)
	assert.Equal(t, admin.CodePermissionDenied, admin.CodeOf(err))

	// Unknown status is rejected.
	_, err = s.SetBookingStatus(ctx, caller(rbac.RoleManager), b.ID, Status("done"))
	assert.Equal(t, admin.CodeInvalidArgument, admin.CodeOf(err))
}

func TestDeleteBooking(t *testing.T) {
	ctx := context.Background()
	s := newService()
	prop := seedProperty(t, s)
	tenant := caller(rbac.RoleTenant)

	b, err := s.CreateBooking(ctx, tenant, bookingParams(prop, tenant.ID))
	require.NoError(t, err)

	err = s.DeleteBooking(ctx, tenant, b.ID)
	assert.Equal(t, admin.CodePermissionDenied, admin.CodeOf(err))

	require.NoError(t, s.DeleteBooking(ctx, caller(rbac.RoleAdmin), b.ID))
	err = s.DeleteBooking(ctx, caller(rbac.RoleAdmin), b.ID)
	assert.Equal(t, admin.CodeNotFound, admin.CodeOf(err))
}

package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lettable/booking-admin/pkg/rbac"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository())

	ident, err := svc.Register(ctx, "Bob@X.com", "secret", "Bob")
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", ident.Email, "emails are normalized")
	assert.NotEqual(t, []byte("secret"), ident.PasswordHash, "the raw password is never stored")
	assert.False(t, ident.Claims.Assigned())

	got, err := svc.Authenticate(ctx, "bob@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, ident.ID, got.ID)

	// Lookup is case-insensitive.
	_, err = svc.Authenticate(ctx, "BOB@x.com", "secret")
	assert.NoError(t, err)
}

func TestAuthenticateFailuresIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository())
	_, err := svc.Register(ctx, "bob@x.com", "secret", "Bob")
	require.NoError(t, err)

	_, wrongPassword := svc.Authenticate(ctx, "bob@x.com", "wrong")
	_, unknownEmail := svc.Authenticate(ctx, "nobody@x.com", "secret")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository())

	_, err := svc.Register(ctx, "bob@x.com", "secret", "Bob")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "BOB@x.com", "other", "Bobby")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository())
	ident, err := svc.Register(ctx, "bob@x.com", "secret", "Bob")
	require.NoError(t, err)

	require.NoError(t, svc.SetRole(ctx, ident.ID, rbac.RoleManager))
	got, err := svc.GetByID(ctx, ident.ID)
	require.NoError(t, err)
	assert.Equal(t, rbac.Claims{Manager: true}, got.Claims)
	assert.False(t, got.ClaimsUpdatedAt.IsZero())

	// Reassignment flips every flag, not just the new one.
	require.NoError(t, svc.SetRole(ctx, ident.ID, rbac.RoleStaff))
	got, err = svc.GetByID(ctx, ident.ID)
	require.NoError(t, err)
	assert.Equal(t, rbac.Claims{Staff: true}, got.Claims)

	err = svc.SetRole(ctx, ident.ID, rbac.Role("superuser"))
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)
}

func TestSetPassword(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository())
	ident, err := svc.Register(ctx, "bob@x.com", "secret", "Bob")
	require.NoError(t, err)

	require.NoError(t, svc.SetPassword(ctx, ident.ID, "changed"))
	_, err = svc.Authenticate(ctx, "bob@x.com", "changed")
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, "bob@x.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository())
	ident, err := svc.Register(ctx, "bob@x.com", "secret", "Bob")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ident.ID))
	_, err = svc.GetByID(ctx, ident.ID)
	assert.ErrorIs(t, err, ErrIdentityNotFound)

	// The email becomes available again.
	_, err = svc.Register(ctx, "bob@x.com", "secret", "Bob II")
	assert.NoError(t, err)
}

package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"manager", RoleManager, false},
		{"staff", RoleStaff, false},
		{"tenant", RoleTenant, false},
		{"superuser", "", true},
		{"Admin", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownRole)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleClaims(t *testing.T) {
	// Exactly one flag true per role.
	for _, role := range Roles() {
		claims := role.Claims()
		count := 0
		for _, flag := range []bool{claims.Admin, claims.Manager, claims.Staff, claims.Tenant} {
			if flag {
				count++
			}
		}
		assert.Equal(t, 1, count, "role %s", role)
		assert.Equal(t, role, claims.Role())
	}
}

func TestClaimsRolePrecedence(t *testing.T) {
	// Multiple flags should never happen, but the highest privilege wins if
	// they do.
	claims := Claims{Admin: true, Manager: true, Tenant: true}
	assert.Equal(t, RoleAdmin, claims.Role())

	claims = Claims{Manager: true, Staff: true}
	assert.Equal(t, RoleManager, claims.Role())

	claims = Claims{Staff: true, Tenant: true}
	assert.Equal(t, RoleStaff, claims.Role())
}

func TestClaimsUnassigned(t *testing.T) {
	var claims Claims
	assert.False(t, claims.Assigned())
	// No flags set still reads as the default tenant role.
	assert.Equal(t, RoleTenant, claims.Role())

	claims = Claims{Staff: true}
	assert.True(t, claims.Assigned())
}

func TestClaimsFromMap(t *testing.T) {
	claims := ClaimsFromMap(map[string]interface{}{
		"admin":   false,
		"manager": true,
		"staff":   false,
		"tenant":  false,
		"email":   "bob@x.com",
	})
	assert.Equal(t, Claims{Manager: true}, claims)

	// Missing and non-bool values read as false.
	claims = ClaimsFromMap(map[string]interface{}{"admin": "yes"})
	assert.Equal(t, Claims{}, claims)
}

func TestRoleGates(t *testing.T) {
	assert.True(t, RoleAdmin.CanManageUsers())
	assert.False(t, RoleManager.CanManageUsers())

	assert.True(t, RoleAdmin.CanManageBookings())
	assert.True(t, RoleManager.CanManageBookings())
	assert.False(t, RoleStaff.CanManageBookings())

	assert.True(t, RoleStaff.CanViewAllBookings())
	assert.False(t, RoleTenant.CanViewAllBookings())
}

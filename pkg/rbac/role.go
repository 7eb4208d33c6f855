package rbac

import (
	"errors"
	"fmt"
)

// Role is one of the four recognized roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
	RoleTenant  Role = "tenant"
)

var ErrUnknownRole = errors.New("unknown role")

// Roles returns all recognized roles in precedence order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleStaff, RoleTenant}
}

// ParseRole validates a role string received from a client.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleStaff, RoleTenant:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string {
	return string(r)
}

// CanManageUsers reports whether the role may call the privileged
// role-assignment and account-deletion operations.
func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}

// CanManageBookings reports whether the role may create, confirm or cancel
// bookings for any tenant.
func (r Role) CanManageBookings() bool {
	return r == RoleAdmin || r == RoleManager
}

// CanViewAllBookings reports whether the role may read bookings belonging to
// other users. Tenants only see their own.
func (r Role) CanViewAllBookings() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleStaff
}

// Claims is the four-flag wire representation of a role, as embedded in
// identity tokens. The zero value means no role has been assigned yet.
type Claims struct {
	Admin   bool `json:"admin"`
	Manager bool `json:"manager"`
	Staff   bool `json:"staff"`
	Tenant  bool `json:"tenant"`
}

// Claims returns the flag set with exactly one flag true.
func (r Role) Claims() Claims {
	return Claims{
		Admin:   r == RoleAdmin,
		Manager: r == RoleManager,
		Staff:   r == RoleStaff,
		Tenant:  r == RoleTenant,
	}
}

// Assigned reports whether any flag is set. Identities carry the zero value
// between registration and their first role assignment.
func (c Claims) Assigned() bool {
	return c.Admin || c.Manager || c.Staff || c.Tenant
}

// Role collapses a flag set back to a single role. Foreign flag sets with
// several flags raised resolve in admin > manager > staff order; an empty
// set resolves to tenant, matching how signed-in users without claims are
// treated.
func (c Claims) Role() Role {
	switch {
	case c.Admin:
		return RoleAdmin
	case c.Manager:
		return RoleManager
	case c.Staff:
		return RoleStaff
	default:
		return RoleTenant
	}
}

// ClaimsFromMap reads the four flags out of decoded token claims. Missing or
// non-boolean entries count as false.
func ClaimsFromMap(m map[string]interface{}) Claims {
	flag := func(key string) bool {
		v, ok := m[key].(bool)
		return ok && v
	}
	return Claims{
		Admin:   flag("admin"),
		Manager: flag("manager"),
		Staff:   flag("staff"),
		Tenant:  flag("tenant"),
	}
}

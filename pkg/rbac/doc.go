// Package rbac defines the closed set of roles used across the booking
// administration service and their representation as token claims.
//
// A user holds exactly one role at a time. The four-flag Claims form exists
// only for the token wire format; it is always derived from a Role, never
// assembled by hand, so zero-or-multiple-true flag sets cannot originate
// from this codebase.
package rbac

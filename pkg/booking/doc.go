// Package booking stores properties and tenancy bookings. Access is gated by
// the caller's role: admins and managers manage everything, staff read all
// bookings, tenants see only their own.
package booking

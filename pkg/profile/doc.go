// Package profile is the profile store: one mutable record per user, keyed
// by user id, mirroring display data and the assigned role.
//
// The record's role field is a best-effort mirror of the identity's claims;
// the two are written separately with no shared transaction. Upserts merge
// rather than overwrite, and last_updated is always server-assigned.
package profile

// Package directory is the identity provider for the booking administration
// service. It owns user identities, their credentials and their custom role
// claims.
//
// Identities are created at registration and never mutated afterwards except
// for their claims and password hash. Claims are rewritten only by the
// role-assignment service in pkg/admin and are read when minting new tokens,
// so already-issued tokens stay stale until the holder refreshes.
//
// Storage is abstracted behind the Repository interface with a PostgreSQL
// implementation for production and an in-memory implementation for tests
// and database-free development.
package directory

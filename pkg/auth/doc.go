// Package auth handles token issuance and verification for the booking
// administration service.
//
// Access tokens are HS256 JWTs carrying the caller's four role claim flags.
// Claims are read from the identity directory only at mint time, so a token
// issued before a role change keeps its stale claims until the holder calls
// the refresh endpoint, which re-reads the directory.
package auth

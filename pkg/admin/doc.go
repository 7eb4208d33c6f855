// Package admin implements the privileged role management operations: role
// assignment, account deletion and the roster reads backing the admin
// console.
//
// Assignment and deletion each write two stores (identity directory first,
// then profile store) with no transaction spanning them. A failure after the
// first write leaves the stores disagreeing; the Reconciler repairs such
// records on a background sweep, treating directory claims as the source of
// truth.
package admin

// Package repository defines sentinel errors shared across the data
// access layer. Handlers compare against these values to pick the
// right HTTP status: a missing row is a 404, a duplicate unique key a
// 409. Store connectivity failures are returned as-is and surface as
// 500s; this layer never retries them.
package repository

import "errors"

// ErrNotFound is returned when a single-row lookup matches nothing.
// It is distinct from connectivity failures so callers can tell an
// empty result from a broken store.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering with an email that is
// already taken (unique key on users.email).
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateFavorite is returned when inserting a (user, listing)
// favorite pair that already exists. The unique pair key in the store
// is the real serialization point; the pre-check in the handler is
// advisory only.
var ErrDuplicateFavorite = errors.New("listing already in favorites")

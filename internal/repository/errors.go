// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.  For
// example, ErrForbidden indicates that the current user is not
// authorized to operate on a resource owned by someone else, while
// ErrNoAvailability signals that a stay cannot be booked because at
// least one night in the range has no rooms left.
package repository

import "errors"

// ErrNotFound is returned when the requested entity does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own.  Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state.  Handlers should translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrNoAvailability is returned by the availability ledger when one or
// more nights in a requested stay range have no rooms left.  The
// decrement is conditional and the surrounding transaction rolls back,
// so no partial decrements survive.
var ErrNoAvailability = errors.New("no rooms available")

// ErrDateNotSupported is returned when a stay night falls outside the
// seeded availability window and therefore has no ledger record.
var ErrDateNotSupported = errors.New("date not supported for booking")

// ErrAlreadyLinked is returned when a reservation that already belongs
// to an itinerary is linked a second time.
var ErrAlreadyLinked = errors.New("reservation already linked to an itinerary")

// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to modify a feedback entry owned by someone else, while
// ErrNotFound signals that the referenced row does not exist.
package repository

import "errors"

// ErrNotFound is returned when the referenced row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because
// of conflicting state, such as creating a file that already exists
// or re-requesting a reset link too soon. Handlers should translate
// this into an HTTP 409 (or 429) response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by user creation when the email address
// is already registered.
var ErrEmailExists = errors.New("email already exists")

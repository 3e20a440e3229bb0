// Package repository defines error types that are reused across multiple
// repositories.  Handlers translate them into HTTP statuses: the "exists"
// and "taken" errors become 409 (400 for review ids, matching the form
// flow), the "not found" errors become 404, anything else is a 500.
package repository

import "errors"

// ErrUserExists is returned by registration when the username or the
// user id is already in use.
var ErrUserExists = errors.New("user already exists")

// ErrUsernameTaken is returned when renaming to a name another user holds.
var ErrUsernameTaken = errors.New("username already taken")

// ErrUserNotFound is returned when a session username no longer maps to a
// Users row.
var ErrUserNotFound = errors.New("user not found")

// ErrReviewExists is returned when a review id is already in use.
var ErrReviewExists = errors.New("review id already exists")

// ErrProductNotFound is returned by exact-name product lookups.
var ErrProductNotFound = errors.New("product not found")

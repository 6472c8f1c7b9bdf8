package repository

import "errors"

// ErrNotFound is returned when a query scoped to a user matches no row.
var ErrNotFound = errors.New("record not found")

package repository

import "errors"

// ErrNotFound is returned when a row does not exist or belongs to another
// user. The two cases are deliberately indistinguishable so handlers never
// leak existence of other users' data.
var ErrNotFound = errors.New("not found")

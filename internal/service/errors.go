package service

import "errors"

var (
	// ErrConflict marks a write rejected because of a uniqueness clash,
	// such as a taken username.
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials is returned for every login failure. The
	// message stays generic so it never reveals whether the username
	// exists.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

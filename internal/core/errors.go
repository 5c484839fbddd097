package core

import "errors"

var (
	// ErrNotFound covers both a missing record and one owned by another
	// user; callers must not be able to tell the two apart.
	ErrNotFound           = errors.New("domain not found or access denied")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

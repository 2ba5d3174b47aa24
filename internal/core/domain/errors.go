package domain

import "errors"

// Common domain errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrDuplicateEntry   = errors.New("duplicate entry")
)

// Pipeline errors
var (
	ErrInvalidTransition = errors.New("invalid stage transition")
	ErrAlreadyConverted  = errors.New("lead already converted")
)

// Account security errors. Both must map to the same external rejection as
// bad credentials so account state never leaks, but they stay distinct here
// for audit logging.
var (
	ErrAccountLocked   = errors.New("account temporarily locked")
	ErrAccountInactive = errors.New("account is not active")
)

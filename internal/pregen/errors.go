package pregen

import (
	"errors"
	"fmt"
)

// Admission sentinels. A rejected request returns a *RejectError wrapping one
// of them; check with errors.Is.
var (
	ErrInvalidArea     = errors.New("invalid area")
	ErrInvalidRadius   = errors.New("invalid radius")
	ErrUnknownWorld    = errors.New("unknown world")
	ErrInvalidSpeed    = errors.New("invalid speed")
	ErrInvalidLighting = errors.New("invalid lighting policy")
	ErrCapacity        = errors.New("insufficient capacity")
)

// RejectError is returned by Submit when a request fails admission.
// No scheduler state is changed by a rejected request.
type RejectError struct {
	Reason string
	Err    error
}

func reject(err error, format string, args ...any) *RejectError {
	return &RejectError{
		Reason: fmt.Sprintf(format, args...),
		Err:    err,
	}
}

// Error implements error.
func (e *RejectError) Error() string {
	return fmt.Sprintf("request rejected: %s", e.Reason)
}

// Unwrap returns the admission sentinel.
func (e *RejectError) Unwrap() error {
	return e.Err
}

// IsRejected reports whether err is an admission rejection.
func IsRejected(err error) bool {
	var re *RejectError
	return errors.As(err, &re)
}

package domain

import "errors"

var (
	// ErrInvalidSize is returned when an order is submitted with a
	// non-positive size. Recoverable: the caller may re-prompt.
	ErrInvalidSize = errors.New("order size must be positive")

	// ErrMissingCredential is returned when a connect attempt carries no
	// credential. Recoverable: the caller may re-prompt.
	ErrMissingCredential = errors.New("credential required")
)

// ValidationError represents an invalid configuration value (never recoverable
// at runtime; the process should refuse to start).
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return "invalid config [" + e.Field + "]: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsRejection reports whether err is a local, recoverable order/connect
// rejection that should be surfaced to the caller rather than logged as a
// system fault.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidSize) || errors.Is(err, ErrMissingCredential)
}

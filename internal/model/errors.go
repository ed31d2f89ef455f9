package model

import "errors"

// Reclaim failures. ReclaimResult.Err wraps one of these so callers can
// branch with errors.Is.
var (
	// ErrNoProcessFound is returned when the socket table has no holder
	// for the port, typically because it was released after the probe.
	ErrNoProcessFound = errors.New("No process found on the port")

	// ErrKillFailed is returned when a terminate signal could not be
	// delivered (permission denied, stale pid).
	ErrKillFailed = errors.New("failed to kill process")

	// ErrQueryFailed is returned when the socket-table query itself could
	// not be executed or its output could not be parsed.
	ErrQueryFailed = errors.New("failed to query socket table")
)

// UsageError reports arguments that cannot be turned into a ScanRequest.
// The CLI recovers from it by printing the usage text.
type UsageError struct {
	// Message is printed on its own line above the usage text.
	Message string

	// Err is the underlying validation error, if any.
	Err error
}

func (e *UsageError) Error() string {
	if e.Err != nil {
		return e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Message
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// NewUsageError creates a UsageError with the given message.
func NewUsageError(message string) *UsageError {
	return &UsageError{Message: message}
}

// IsUsageError reports whether err is, or wraps, a *UsageError.
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

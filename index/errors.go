package index

import "fmt"

// ErrDimensionMismatch is a named error type for dimension mismatch
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidParameter is a named error type for rejected parameters
type ErrInvalidParameter struct {
	Param  string // Name of the offending parameter
	Reason string // Why it was rejected
}

// Error returns the error message for an invalid parameter
func (e *ErrInvalidParameter) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// ErrAlreadyExists is a named error type for duplicate identifiers
type ErrAlreadyExists struct {
	ID string // Identifier that is already present
}

// Error returns the error message for a duplicate identifier
func (e *ErrAlreadyExists) Error() string {
	return fmt.Sprintf("id already exists: %q", e.ID)
}

// ErrInternal is a named error type for invariant violations inside an
// index. It carries the identifier and graph layer involved when known.
type ErrInternal struct {
	Op    string // Operation that detected the violation
	ID    string // External identifier involved, if any
	Layer int    // Graph layer involved, or -1
	Err   error  // Underlying cause, if any
}

// Error returns the error message for an internal index error
func (e *ErrInternal) Error() string {
	msg := "internal: " + e.Op
	if e.ID != "" {
		msg += fmt.Sprintf(" id=%q", e.ID)
	}
	if e.Layer >= 0 {
		msg += fmt.Sprintf(" layer=%d", e.Layer)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ErrInternal) Unwrap() error { return e.Err }

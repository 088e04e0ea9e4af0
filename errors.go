package dynamosql

import (
	"errors"
	"fmt"
)

var (
	// ErrCursorClosed is returned by any cursor operation after Close.
	ErrCursorClosed = errors.New("cursor is closed")

	// ErrNoResultSet is returned when fetching before any Execute.
	ErrNoResultSet = errors.New("no result set, call Execute first")
)

// ValidationError reports a statement batch rejected before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// OperationalError wraps a native call failure that was not retried,
// or that kept failing until the attempt budget ran out.
type OperationalError struct {
	Operation string
	Code      string
	Attempts  int
	Err       error
}

func (e *OperationalError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s failed after %d attempt(s) with %s: %v", e.Operation, e.Attempts, e.Code, e.Err)
	}
	return fmt.Sprintf("%s failed after %d attempt(s): %v", e.Operation, e.Attempts, e.Err)
}

func (e *OperationalError) Unwrap() error {
	return e.Err
}

// ItemError is one per-item failure reported by a batch or transaction call.
// It is recorded in the cursor error log, never returned.
type ItemError struct {
	// Index is the position of the failing statement in the batch.
	Index   int
	Code    string
	Message string
}

func (e ItemError) String() string {
	return fmt.Sprintf("statement %d: %s: %s", e.Index, e.Code, e.Message)
}

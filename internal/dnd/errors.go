package dnd

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDropHandler indicates a commit without a registered drop action.
	ErrNoDropHandler = errors.New("no drop handler registered")

	// ErrAlreadyCommitted indicates a second commit within one session.
	ErrAlreadyCommitted = errors.New("drop already committed for this session")

	// ErrHostPanic indicates a host callback panicked.
	ErrHostPanic = errors.New("host callback panicked")
)

// HostError wraps a failure inside a host callback.
type HostError struct {
	Op    string // Callback name (e.g., "CanDrag", "CommitDrop")
	Panic any    // Recovered value, if the callback panicked
	Err   error  // Returned error, if any
}

func (e *HostError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("%s: panic: %v", e.Op, e.Panic)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *HostError) Unwrap() error {
	if e.Panic != nil {
		return ErrHostPanic
	}
	return e.Err
}

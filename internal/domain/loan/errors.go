package loan

import "errors"

var (
	ErrNotFound          = errors.New("loan not found")
	ErrAlreadyAssigned   = errors.New("offer no longer available")
	ErrInvalidTransition = errors.New("loan not in a state that allows this action")
	// ErrStale means the loan row changed between read and commit.
	ErrStale = errors.New("loan changed concurrently")
)

package interfaces

import "errors"

var (
	// ErrNotFound means no document exists for the given identity.
	ErrNotFound = errors.New("document not found")

	// ErrNoMatch means the document exists but the conditional update's
	// guard did not hold (seat exhausted, status already moved on).
	ErrNoMatch = errors.New("no document matched the condition")
)

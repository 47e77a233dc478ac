package services

import (
	"errors"
	"fmt"

	"gocarpool/internal/models"
)

var (
	ErrTripNotFound    = errors.New("trip not found")
	ErrRequestNotFound = errors.New("ride request not found")

	// ErrSeatUnavailable means the atomic seat reservation lost the race.
	// Distinct from ErrTripNotFound so seat-race losers get a clear outcome.
	ErrSeatUnavailable = errors.New("no seats available")

	ErrForbidden = errors.New("caller is not allowed to perform this operation")

	ErrDuplicateRequest  = errors.New("passenger already has a pending request for this trip")
	ErrRequestNotPending = errors.New("ride request is not pending")
	ErrPickupOrder       = errors.New("pickup status cannot advance from its current state")
)

// InvalidTransitionError reports an illegal trip status change, carrying both
// sides of the edge so clients can reconcile their UI.
type InvalidTransitionError struct {
	Current   models.TripStatus
	Attempted models.TripStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid trip status transition: %s -> %s", e.Current, e.Attempted)
}

// NewInvalidTransition builds the error for a rejected edge.
func NewInvalidTransition(current, attempted models.TripStatus) error {
	return &InvalidTransitionError{Current: current, Attempted: attempted}
}

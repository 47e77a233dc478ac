package interfaces

import (
	"context"

	"gocarpool/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RideRequestRepository is the booking store. Approval/rejection and pickup
// progress are conditional updates so state-machine guards hold under
// concurrent callers.
type RideRequestRepository interface {
	Create(ctx context.Context, request *models.RideRequest) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.RideRequest, error)

	// HasPending reports whether the passenger already holds a pending
	// request for the trip.
	HasPending(ctx context.Context, passengerID, tripID primitive.ObjectID) (bool, error)

	// ResolvePending moves a pending request to approved or rejected iff it
	// is still pending, returning the updated request.
	ResolvePending(ctx context.Context, id primitive.ObjectID, to models.RequestStatus) (*models.RideRequest, error)

	// Reopen moves an approved request back to pending iff it is still
	// approved. It compensates an approval whose seat reservation lost.
	Reopen(ctx context.Context, id primitive.ObjectID) (*models.RideRequest, error)

	// AdvancePickup moves pickup_status from -> to iff the request is
	// approved and currently at from, stamping the given timestamp field.
	AdvancePickup(ctx context.Context, id primitive.ObjectID, from, to models.PickupStatus) (*models.RideRequest, error)

	ListByTrip(ctx context.Context, tripID primitive.ObjectID) ([]*models.RideRequest, error)
	ListByPassenger(ctx context.Context, passengerID primitive.ObjectID) ([]*models.RideRequest, error)
}

package interfaces

import (
	"context"

	"gocarpool/internal/models"
	"gocarpool/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripRepository is the trip store. Seat counts are mutated only through
// ReserveSeat; status fields only through the conditional transition methods.
type TripRepository interface {
	Create(ctx context.Context, trip *models.Trip) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Trip, error)

	// ReserveSeat decrements available_seats iff it is still positive, as a
	// single conditional update, and returns the post-decrement trip. It
	// never reads then writes. Returns ErrNoMatch when the trip exists but
	// has no seats left, ErrNotFound when it does not exist.
	ReserveSeat(ctx context.Context, id primitive.ObjectID) (*models.Trip, error)

	// UpdateStatus moves the trip to the target status iff its current
	// status is one of from, applying extra set fields in the same update.
	// Returns ErrNoMatch when the trip exists but its status is not in from.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from []models.TripStatus, to models.TripStatus, set map[string]interface{}) (*models.Trip, error)

	// SetCurrentLocation persists the driver position unconditionally
	// (administrative HTTP path).
	SetCurrentLocation(ctx context.Context, id primitive.ObjectID, loc *models.Location) error

	// SetLiveLocation persists live telemetry: it matches only trips whose
	// status is started or in_progress and promotes started trips to
	// in_progress in the same atomic update.
	SetLiveLocation(ctx context.Context, id primitive.ObjectID, loc *models.Location) (*models.Trip, error)

	Search(ctx context.Context, source, destination string, vehicleType *models.VehicleType, p *utils.PaginationParams) ([]*models.Trip, int64, error)
	SearchNearby(ctx context.Context, lat, lng, maxDistanceKM float64, limit int64) ([]*models.Trip, error)
}

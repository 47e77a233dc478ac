package mongodb

import (
	"context"
	"fmt"
	"time"

	"gocarpool/internal/models"
	"gocarpool/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type rideRequestRepository struct {
	collection *mongo.Collection
}

func NewRideRequestRepository(db *mongo.Database) interfaces.RideRequestRepository {
	return &rideRequestRepository{
		collection: db.Collection("ride_requests"),
	}
}

func (r *rideRequestRepository) Create(ctx context.Context, request *models.RideRequest) error {
	request.ID = primitive.NewObjectID()
	request.Status = models.RequestStatusPending
	request.PickupStatus = models.PickupStatusWaiting
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt

	_, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The partial unique index on pending (passenger_id, trip_id)
			// caught a concurrent duplicate.
			return interfaces.ErrNoMatch
		}
		return fmt.Errorf("failed to create ride request: %w", err)
	}

	return nil
}

func (r *rideRequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.RideRequest, error) {
	var request models.RideRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ride request: %w", err)
	}

	return &request, nil
}

func (r *rideRequestRepository) HasPending(ctx context.Context, passengerID, tripID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"passenger_id": passengerID,
		"trip_id":      tripID,
		"status":       models.RequestStatusPending,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}

	return count > 0, nil
}

func (r *rideRequestRepository) ResolvePending(ctx context.Context, id primitive.ObjectID, to models.RequestStatus) (*models.RideRequest, error) {
	filter := bson.M{
		"_id":    id,
		"status": models.RequestStatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": time.Now(),
		},
	}

	var request models.RideRequest
	err := r.collection.FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&request)

	if err == mongo.ErrNoDocuments {
		return nil, r.classifyNoMatch(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ride request: %w", err)
	}

	return &request, nil
}

func (r *rideRequestRepository) Reopen(ctx context.Context, id primitive.ObjectID) (*models.RideRequest, error) {
	filter := bson.M{
		"_id":    id,
		"status": models.RequestStatusApproved,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     models.RequestStatusPending,
			"updated_at": time.Now(),
		},
	}

	var request models.RideRequest
	err := r.collection.FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&request)

	if err == mongo.ErrNoDocuments {
		return nil, r.classifyNoMatch(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reopen ride request: %w", err)
	}

	return &request, nil
}

// AdvancePickup enforces the monotonic pickup ordering at the store: the
// request must be approved and sitting exactly at from.
func (r *rideRequestRepository) AdvancePickup(ctx context.Context, id primitive.ObjectID, from, to models.PickupStatus) (*models.RideRequest, error) {
	now := time.Now()

	fields := bson.M{
		"pickup_status": to,
		"updated_at":    now,
	}
	switch to {
	case models.PickupStatusPickedUp:
		fields["picked_up_at"] = now
	case models.PickupStatusDroppedOff:
		fields["dropped_off_at"] = now
	}

	filter := bson.M{
		"_id":           id,
		"status":        models.RequestStatusApproved,
		"pickup_status": from,
	}

	var request models.RideRequest
	err := r.collection.FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&request)

	if err == mongo.ErrNoDocuments {
		return nil, r.classifyNoMatch(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to advance pickup status: %w", err)
	}

	return &request, nil
}

func (r *rideRequestRepository) ListByTrip(ctx context.Context, tripID primitive.ObjectID) ([]*models.RideRequest, error) {
	return r.list(ctx, bson.M{"trip_id": tripID})
}

func (r *rideRequestRepository) ListByPassenger(ctx context.Context, passengerID primitive.ObjectID) ([]*models.RideRequest, error) {
	return r.list(ctx, bson.M{"passenger_id": passengerID})
}

func (r *rideRequestRepository) list(ctx context.Context, filter bson.M) ([]*models.RideRequest, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list ride requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*models.RideRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode ride requests: %w", err)
	}

	return requests, nil
}

func (r *rideRequestRepository) classifyNoMatch(ctx context.Context, id primitive.ObjectID) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to classify update miss: %w", err)
	}
	if count == 0 {
		return interfaces.ErrNotFound
	}
	return interfaces.ErrNoMatch
}

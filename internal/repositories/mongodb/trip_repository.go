package mongodb

import (
	"context"
	"fmt"
	"time"

	"gocarpool/internal/models"
	"gocarpool/internal/repositories/interfaces"
	"gocarpool/internal/utils"
	"gocarpool/pkg/cache"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type tripRepository struct {
	collection *mongo.Collection
	cache      *cache.RedisCache
}

func NewTripRepository(db *mongo.Database, cache *cache.RedisCache) interfaces.TripRepository {
	return &tripRepository{
		collection: db.Collection("trips"),
		cache:      cache,
	}
}

func (r *tripRepository) Create(ctx context.Context, trip *models.Trip) error {
	trip.ID = primitive.NewObjectID()
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = trip.CreatedAt

	_, err := r.collection.InsertOne(ctx, trip)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	r.cacheTrip(ctx, trip)

	return nil
}

func (r *tripRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Trip, error) {
	if trip := r.getTripFromCache(ctx, id.Hex()); trip != nil {
		return trip, nil
	}

	var trip models.Trip
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&trip)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	r.cacheTrip(ctx, &trip)

	return &trip, nil
}

// ReserveSeat is the seat allocator primitive: the availability check and the
// decrement are one FindOneAndUpdate, so concurrent approvals are serialized
// by the store and can never oversell the trip.
func (r *tripRepository) ReserveSeat(ctx context.Context, id primitive.ObjectID) (*models.Trip, error) {
	filter := bson.M{
		"_id":             id,
		"available_seats": bson.M{"$gt": 0},
	}
	update := bson.M{
		"$inc": bson.M{"available_seats": -1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	var trip models.Trip
	err := r.collection.FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&trip)

	if err == mongo.ErrNoDocuments {
		return nil, r.classifyNoMatch(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reserve seat: %w", err)
	}

	r.invalidateTripCache(ctx, id.Hex())

	return &trip, nil
}

func (r *tripRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from []models.TripStatus, to models.TripStatus, set map[string]interface{}) (*models.Trip, error) {
	fields := bson.M{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range set {
		fields[k] = v
	}

	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": from},
	}

	var trip models.Trip
	err := r.collection.FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&trip)

	if err == mongo.ErrNoDocuments {
		return nil, r.classifyNoMatch(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update trip status: %w", err)
	}

	r.invalidateTripCache(ctx, id.Hex())

	return &trip, nil
}

func (r *tripRepository) SetCurrentLocation(ctx context.Context, id primitive.ObjectID, loc *models.Location) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"current_location": loc, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update trip location: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	r.invalidateTripCache(ctx, id.Hex())

	return nil
}

// SetLiveLocation accepts telemetry only while the trip is live, and promotes
// a started trip to in_progress in the same update.
func (r *tripRepository) SetLiveLocation(ctx context.Context, id primitive.ObjectID, loc *models.Location) (*models.Trip, error) {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": models.LiveStatuses()},
	}
	update := bson.M{
		"$set": bson.M{
			"current_location": loc,
			"status":           models.TripStatusInProgress,
			"updated_at":       time.Now(),
		},
	}

	var trip models.Trip
	err := r.collection.FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&trip)

	if err == mongo.ErrNoDocuments {
		return nil, r.classifyNoMatch(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record live location: %w", err)
	}

	r.invalidateTripCache(ctx, id.Hex())

	return &trip, nil
}

func (r *tripRepository) Search(ctx context.Context, source, destination string, vehicleType *models.VehicleType, p *utils.PaginationParams) ([]*models.Trip, int64, error) {
	filter := bson.M{
		"status":          models.TripStatusScheduled,
		"available_seats": bson.M{"$gte": 1},
	}
	if source != "" {
		filter["source"] = bson.M{"$regex": source, "$options": "i"}
	}
	if destination != "" {
		filter["destination"] = bson.M{"$regex": destination, "$options": "i"}
	}
	if vehicleType != nil {
		filter["vehicle_type"] = *vehicleType
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, p.FindOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search trips: %w", err)
	}
	defer cursor.Close(ctx)

	var trips []*models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, 0, fmt.Errorf("failed to decode trips: %w", err)
	}

	return trips, total, nil
}

func (r *tripRepository) SearchNearby(ctx context.Context, lat, lng, maxDistanceKM float64, limit int64) ([]*models.Trip, error) {
	filter := bson.M{
		"status":          models.TripStatusScheduled,
		"available_seats": bson.M{"$gte": 1},
		"source_location": bson.M{
			"$geoWithin": bson.M{
				// $centerSphere takes the radius in radians.
				"$centerSphere": []interface{}{
					[]float64{lng, lat},
					maxDistanceKM / utils.EarthRadiusKM,
				},
			},
		},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to search nearby trips: %w", err)
	}
	defer cursor.Close(ctx)

	var trips []*models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, fmt.Errorf("failed to decode trips: %w", err)
	}

	return trips, nil
}

// classifyNoMatch distinguishes "trip absent" from "guard did not hold" after
// a conditional update matched nothing.
func (r *tripRepository) classifyNoMatch(ctx context.Context, id primitive.ObjectID) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to classify update miss: %w", err)
	}
	if count == 0 {
		return interfaces.ErrNotFound
	}
	return interfaces.ErrNoMatch
}

// Cache helpers. Only non-terminal trips are cached; reads fall through to
// Mongo on any cache miss or error.
func (r *tripRepository) cacheTrip(ctx context.Context, trip *models.Trip) {
	if r.cache == nil || trip.Status.IsTerminal() {
		return
	}
	_ = r.cache.Set(ctx, tripCacheKey(trip.ID.Hex()), trip, utils.TripCacheTTL)
}

func (r *tripRepository) getTripFromCache(ctx context.Context, id string) *models.Trip {
	if r.cache == nil {
		return nil
	}
	var trip models.Trip
	if err := r.cache.Get(ctx, tripCacheKey(id), &trip); err != nil {
		return nil
	}
	return &trip
}

func (r *tripRepository) invalidateTripCache(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, tripCacheKey(id))
}

func tripCacheKey(id string) string {
	return "trip:" + id
}

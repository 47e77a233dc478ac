package services

import (
	"context"
	"errors"
	"time"

	"gocarpool/internal/models"
	"gocarpool/internal/repositories/interfaces"
	"gocarpool/internal/utils"
	"gocarpool/pkg/logger"
	"gocarpool/pkg/maps"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateTripInput is the validated payload for publishing a trip.
type CreateTripInput struct {
	VehicleType         models.VehicleType
	TotalSeats          int
	ScheduledTime       time.Time
	Source              string
	Destination         string
	SourceLocation      *models.Location
	DestinationLocation *models.Location
}

// TripWithRequests is a trip together with its booking records, returned by
// GetTrip for the driver-facing detail view.
type TripWithRequests struct {
	*models.Trip
	RideRequests []*models.RideRequest `json:"ride_requests"`
}

type TripService interface {
	Create(ctx context.Context, driverID primitive.ObjectID, input *CreateTripInput) (*models.Trip, error)
	Get(ctx context.Context, tripID primitive.ObjectID) (*TripWithRequests, error)
	Start(ctx context.Context, tripID, callerID primitive.ObjectID) (*models.Trip, error)
	Complete(ctx context.Context, tripID, callerID primitive.ObjectID) (*models.Trip, error)
	Cancel(ctx context.Context, tripID, callerID primitive.ObjectID) (*models.Trip, error)

	// UpdateLocation is the administrative HTTP path: owner-only, persisted
	// unconditionally.
	UpdateLocation(ctx context.Context, tripID, callerID primitive.ObjectID, lat, lng float64) error

	// RecordLiveLocation is the telemetry path: owner-only and accepted only
	// while the trip is live (started or in progress); a started trip is
	// promoted to in_progress by its first accepted update.
	RecordLiveLocation(ctx context.Context, tripID, callerID primitive.ObjectID, lat, lng float64) (*models.Trip, error)

	Search(ctx context.Context, source, destination string, vehicleType *models.VehicleType, p *utils.PaginationParams) ([]*models.Trip, int64, error)
	SearchNearby(ctx context.Context, srcLat, srcLng, destLat, destLng, maxDistanceKM float64) ([]*models.Trip, error)
}

type tripService struct {
	tripRepo    interfaces.TripRepository
	requestRepo interfaces.RideRequestRepository
	geocoder    maps.RoutingProvider
	hub         NotificationHub
	log         *logger.Logger
}

func NewTripService(
	tripRepo interfaces.TripRepository,
	requestRepo interfaces.RideRequestRepository,
	geocoder maps.RoutingProvider,
	hub NotificationHub,
	log *logger.Logger,
) TripService {
	return &tripService{
		tripRepo:    tripRepo,
		requestRepo: requestRepo,
		geocoder:    geocoder,
		hub:         hub,
		log:         log,
	}
}

func (s *tripService) Create(ctx context.Context, driverID primitive.ObjectID, input *CreateTripInput) (*models.Trip, error) {
	trip := &models.Trip{
		DriverID:            driverID,
		VehicleType:         input.VehicleType,
		TotalSeats:          input.TotalSeats,
		AvailableSeats:      input.TotalSeats,
		Source:              input.Source,
		Destination:         input.Destination,
		SourceLocation:      input.SourceLocation,
		DestinationLocation: input.DestinationLocation,
		ScheduledTime:       input.ScheduledTime,
		Status:              models.TripStatusScheduled,
		EstimatedCost:       utils.BaseTripCost + float64(input.TotalSeats)*utils.CostPerSeat,
	}

	// Best effort: geocode free-text endpoints when no coordinates were
	// supplied. A geocoding failure never blocks trip creation.
	if trip.SourceLocation == nil {
		trip.SourceLocation = s.geocodeAddress(ctx, input.Source)
	}
	if trip.DestinationLocation == nil {
		trip.DestinationLocation = s.geocodeAddress(ctx, input.Destination)
	}

	trip.Route = deriveRoute(trip.SourceLocation, trip.DestinationLocation)

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	s.log.LogTripEvent(trip.ID, "trip_created", map[string]interface{}{
		"driver_id":   driverID.Hex(),
		"total_seats": trip.TotalSeats,
	})

	return trip, nil
}

func (s *tripService) Get(ctx context.Context, tripID primitive.ObjectID) (*TripWithRequests, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, mapTripErr(err)
	}

	requests, err := s.requestRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	return &TripWithRequests{Trip: trip, RideRequests: requests}, nil
}

func (s *tripService) Start(ctx context.Context, tripID, callerID primitive.ObjectID) (*models.Trip, error) {
	if err := s.requireOwner(ctx, tripID, callerID); err != nil {
		return nil, err
	}

	now := time.Now()
	trip, err := s.tripRepo.UpdateStatus(
		ctx,
		tripID,
		[]models.TripStatus{models.TripStatusScheduled},
		models.TripStatusStarted,
		map[string]interface{}{"actual_start_time": now},
	)
	if err != nil {
		return nil, s.transitionErr(ctx, tripID, models.TripStatusStarted, err)
	}

	s.broadcastStatus(trip)
	s.log.LogTripEvent(tripID, "trip_started", nil)

	return trip, nil
}

func (s *tripService) Complete(ctx context.Context, tripID, callerID primitive.ObjectID) (*models.Trip, error) {
	if err := s.requireOwner(ctx, tripID, callerID); err != nil {
		return nil, err
	}

	now := time.Now()
	trip, err := s.tripRepo.UpdateStatus(
		ctx,
		tripID,
		[]models.TripStatus{models.TripStatusScheduled, models.TripStatusStarted, models.TripStatusInProgress},
		models.TripStatusCompleted,
		map[string]interface{}{"actual_end_time": now},
	)
	if err != nil {
		return nil, s.transitionErr(ctx, tripID, models.TripStatusCompleted, err)
	}

	s.broadcastStatus(trip)
	s.log.LogTripEvent(tripID, "trip_completed", nil)

	return trip, nil
}

func (s *tripService) Cancel(ctx context.Context, tripID, callerID primitive.ObjectID) (*models.Trip, error) {
	if err := s.requireOwner(ctx, tripID, callerID); err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.UpdateStatus(
		ctx,
		tripID,
		[]models.TripStatus{models.TripStatusScheduled, models.TripStatusStarted, models.TripStatusInProgress},
		models.TripStatusCancelled,
		nil,
	)
	if err != nil {
		return nil, s.transitionErr(ctx, tripID, models.TripStatusCancelled, err)
	}

	s.broadcastStatus(trip)
	s.log.LogTripEvent(tripID, "trip_cancelled", nil)

	return trip, nil
}

func (s *tripService) UpdateLocation(ctx context.Context, tripID, callerID primitive.ObjectID, lat, lng float64) error {
	if err := s.requireOwner(ctx, tripID, callerID); err != nil {
		return err
	}

	loc := models.NewLocation(lat, lng)
	loc.Timestamp = time.Now()

	if err := s.tripRepo.SetCurrentLocation(ctx, tripID, loc); err != nil {
		return mapTripErr(err)
	}

	return nil
}

func (s *tripService) RecordLiveLocation(ctx context.Context, tripID, callerID primitive.ObjectID, lat, lng float64) (*models.Trip, error) {
	if err := s.requireOwner(ctx, tripID, callerID); err != nil {
		return nil, err
	}

	loc := models.NewLocation(lat, lng)
	loc.Timestamp = time.Now()

	trip, err := s.tripRepo.SetLiveLocation(ctx, tripID, loc)
	if err != nil {
		return nil, s.transitionErr(ctx, tripID, models.TripStatusInProgress, err)
	}

	return trip, nil
}

func (s *tripService) Search(ctx context.Context, source, destination string, vehicleType *models.VehicleType, p *utils.PaginationParams) ([]*models.Trip, int64, error) {
	return s.tripRepo.Search(ctx, source, destination, vehicleType, p)
}

func (s *tripService) SearchNearby(ctx context.Context, srcLat, srcLng, destLat, destLng, maxDistanceKM float64) ([]*models.Trip, error) {
	if maxDistanceKM <= 0 || maxDistanceKM > utils.MaxSearchRadius {
		maxDistanceKM = utils.DefaultSearchRadius
	}

	candidates, err := s.tripRepo.SearchNearby(ctx, srcLat, srcLng, maxDistanceKM, int64(utils.MaxPageSize))
	if err != nil {
		return nil, err
	}

	// The store narrows by source; the destination side is filtered here.
	trips := make([]*models.Trip, 0, len(candidates))
	for _, trip := range candidates {
		if trip.DestinationLocation == nil {
			continue
		}
		if utils.IsWithinRadius(destLat, destLng, trip.DestinationLocation.Latitude(), trip.DestinationLocation.Longitude(), maxDistanceKM) {
			trips = append(trips, trip)
		}
	}

	return trips, nil
}

func (s *tripService) requireOwner(ctx context.Context, tripID, callerID primitive.ObjectID) error {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return mapTripErr(err)
	}
	if trip.DriverID != callerID {
		return ErrForbidden
	}
	return nil
}

// transitionErr converts a conditional-update miss into a typed transition
// error carrying the trip's current status.
func (s *tripService) transitionErr(ctx context.Context, tripID primitive.ObjectID, attempted models.TripStatus, err error) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return ErrTripNotFound
	}
	if errors.Is(err, interfaces.ErrNoMatch) {
		trip, getErr := s.tripRepo.GetByID(ctx, tripID)
		if getErr != nil {
			return mapTripErr(getErr)
		}
		return NewInvalidTransition(trip.Status, attempted)
	}
	return err
}

func (s *tripService) broadcastStatus(trip *models.Trip) {
	if s.hub == nil {
		return
	}
	s.hub.NotifyTripRoom(trip.ID, EventTripStatus, map[string]interface{}{
		"trip_id":   trip.ID.Hex(),
		"status":    trip.Status,
		"timestamp": time.Now().Unix(),
	})
}

func (s *tripService) geocodeAddress(ctx context.Context, address string) *models.Location {
	if s.geocoder == nil || address == "" {
		return nil
	}

	resp, err := s.geocoder.Geocode(ctx, address)
	if err != nil || len(resp.Results) == 0 {
		return nil
	}

	loc := models.NewLocation(resp.Results[0].Coordinates.Latitude, resp.Results[0].Coordinates.Longitude)
	loc.Address = resp.Results[0].Address
	return loc
}

// deriveRoute builds the two-point route when both endpoints are known and
// distinct.
func deriveRoute(src, dst *models.Location) *models.Route {
	if !src.IsValid() || !dst.IsValid() {
		return nil
	}
	if src.Latitude() == dst.Latitude() && src.Longitude() == dst.Longitude() {
		return nil
	}

	return &models.Route{
		Origin:      *src,
		Destination: *dst,
		DistanceKM:  utils.CalculateDistance(src.Latitude(), src.Longitude(), dst.Latitude(), dst.Longitude()),
	}
}

func mapTripErr(err error) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return ErrTripNotFound
	}
	return err
}

package services

import (
	"context"
	"testing"
	"time"

	"gocarpool/internal/models"
	"gocarpool/pkg/maps"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTripFixture(provider maps.RoutingProvider) (*fakeTripRepo, *fakeHub, TripService) {
	tripRepo := newFakeTripRepo()
	requestRepo := newFakeRequestRepo()
	hub := &fakeHub{}
	svc := NewTripService(tripRepo, requestRepo, provider, hub, testLogger())
	return tripRepo, hub, svc
}

func TestCreateTrip(t *testing.T) {
	ctx := context.Background()
	driverID := primitive.NewObjectID()

	t.Run("seats start full and cost follows seat count", func(t *testing.T) {
		_, _, svc := newTripFixture(nil)

		trip, err := svc.Create(ctx, driverID, &CreateTripInput{
			VehicleType:   models.VehicleTypeCar,
			TotalSeats:    4,
			ScheduledTime: time.Now().Add(48 * time.Hour),
			Source:        "Pune",
			Destination:   "Mumbai",
		})
		require.NoError(t, err)
		assert.Equal(t, models.TripStatusScheduled, trip.Status)
		assert.Equal(t, 4, trip.AvailableSeats)
		assert.InDelta(t, 90.0, trip.EstimatedCost, 0.001)
	})

	t.Run("geocodes endpoints and derives route", func(t *testing.T) {
		provider := &stubRoutingProvider{
			geocode: func(address string) (*maps.GeocodeResponse, error) {
				coords := maps.Location{Latitude: 18.52, Longitude: 73.85}
				if address == "Mumbai" {
					coords = maps.Location{Latitude: 19.07, Longitude: 72.87}
				}
				return &maps.GeocodeResponse{Results: []maps.GeocodeResult{{
					Address:     address,
					Coordinates: coords,
				}}}, nil
			},
		}
		_, _, svc := newTripFixture(provider)

		trip, err := svc.Create(ctx, driverID, &CreateTripInput{
			VehicleType:   models.VehicleTypeCar,
			TotalSeats:    2,
			ScheduledTime: time.Now().Add(24 * time.Hour),
			Source:        "Pune",
			Destination:   "Mumbai",
		})
		require.NoError(t, err)
		require.NotNil(t, trip.SourceLocation)
		require.NotNil(t, trip.DestinationLocation)
		require.NotNil(t, trip.Route)
		// Pune to Mumbai is roughly 120 km great-circle.
		assert.InDelta(t, 120, trip.Route.DistanceKM, 10)
	})

	t.Run("geocoding failure does not block creation", func(t *testing.T) {
		_, _, svc := newTripFixture(&stubRoutingProvider{})

		trip, err := svc.Create(ctx, driverID, &CreateTripInput{
			VehicleType:   models.VehicleTypeBike,
			TotalSeats:    1,
			ScheduledTime: time.Now().Add(time.Hour),
			Source:        "Pune",
			Destination:   "Mumbai",
		})
		require.NoError(t, err)
		assert.Nil(t, trip.SourceLocation)
		assert.Nil(t, trip.Route)
	})
}

func TestTripLifecycle(t *testing.T) {
	ctx := context.Background()
	driverID := primitive.NewObjectID()

	t.Run("start stamps actual start time and broadcasts", func(t *testing.T) {
		tripRepo, hub, svc := newTripFixture(nil)
		trip := seedTrip(tripRepo, driverID, 2, models.TripStatusScheduled)

		started, err := svc.Start(ctx, trip.ID, driverID)
		require.NoError(t, err)
		assert.Equal(t, models.TripStatusStarted, started.Status)
		require.NotNil(t, started.ActualStartTime)
		require.Len(t, hub.eventsNamed(EventTripStatus), 1)
	})

	t.Run("only the owner may start", func(t *testing.T) {
		tripRepo, _, svc := newTripFixture(nil)
		trip := seedTrip(tripRepo, driverID, 2, models.TripStatusScheduled)

		_, err := svc.Start(ctx, trip.ID, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("double start reports the current status", func(t *testing.T) {
		tripRepo, _, svc := newTripFixture(nil)
		trip := seedTrip(tripRepo, driverID, 2, models.TripStatusScheduled)

		_, err := svc.Start(ctx, trip.ID, driverID)
		require.NoError(t, err)
		_, err = svc.Start(ctx, trip.ID, driverID)

		var transition *InvalidTransitionError
		require.ErrorAs(t, err, &transition)
		assert.Equal(t, models.TripStatusStarted, transition.Current)
		assert.Equal(t, models.TripStatusStarted, transition.Attempted)
	})

	t.Run("scheduled trip may complete directly", func(t *testing.T) {
		tripRepo, _, svc := newTripFixture(nil)
		trip := seedTrip(tripRepo, driverID, 2, models.TripStatusScheduled)

		completed, err := svc.Complete(ctx, trip.ID, driverID)
		require.NoError(t, err)
		assert.Equal(t, models.TripStatusCompleted, completed.Status)
		require.NotNil(t, completed.ActualEndTime)
	})

	t.Run("terminal trips cannot be cancelled", func(t *testing.T) {
		tripRepo, _, svc := newTripFixture(nil)
		trip := seedTrip(tripRepo, driverID, 2, models.TripStatusCompleted)

		_, err := svc.Cancel(ctx, trip.ID, driverID)
		var transition *InvalidTransitionError
		require.ErrorAs(t, err, &transition)
		assert.Equal(t, models.TripStatusCompleted, transition.Current)
	})

	t.Run("unknown trip", func(t *testing.T) {
		_, _, svc := newTripFixture(nil)
		_, err := svc.Start(ctx, primitive.NewObjectID(), driverID)
		assert.ErrorIs(t, err, ErrTripNotFound)
	})
}

func TestRecordLiveLocation(t *testing.T) {
	ctx := context.Background()
	driverID := primitive.NewObjectID()

	t.Run("first update promotes started to in_progress", func(t *testing.T) {
		tripRepo, _, svc := newTripFixture(nil)
		trip := seedTrip(tripRepo, driverID, 2, models.TripStatusStarted)

		updated, err := svc.RecordLiveLocation(ctx, trip.ID, driverID, 18.6, 73.9)
		require.NoError(t, err)
		assert.Equal(t, models.TripStatusInProgress, updated.Status)
		require.NotNil(t, updated.CurrentLocation)
		assert.InDelta(t, 18.6, updated.CurrentLocation.Latitude(), 0.0001)
	})

	t.Run("scheduled trip rejects telemetry", func(t *testing.T) {
		tripRepo, _, svc := newTripFixture(nil)
		trip := seedTrip(tripRepo, driverID, 2, models.TripStatusScheduled)

		_, err := svc.RecordLiveLocation(ctx, trip.ID, driverID, 18.6, 73.9)
		var transition *InvalidTransitionError
		require.ErrorAs(t, err, &transition)
		assert.Equal(t, models.TripStatusScheduled, transition.Current)
	})

	t.Run("non-owner telemetry is forbidden", func(t *testing.T) {
		tripRepo, _, svc := newTripFixture(nil)
		trip := seedTrip(tripRepo, driverID, 2, models.TripStatusInProgress)

		_, err := svc.RecordLiveLocation(ctx, trip.ID, primitive.NewObjectID(), 18.6, 73.9)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestUpdateLocationAdministrative(t *testing.T) {
	ctx := context.Background()
	driverID := primitive.NewObjectID()
	tripRepo, _, svc := newTripFixture(nil)
	trip := seedTrip(tripRepo, driverID, 2, models.TripStatusScheduled)

	// The HTTP path accepts positions regardless of status.
	err := svc.UpdateLocation(ctx, trip.ID, driverID, 18.6, 73.9)
	require.NoError(t, err)

	stored, err := tripRepo.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CurrentLocation)
	assert.Equal(t, models.TripStatusScheduled, stored.Status)
}

func TestSearchNearbyFiltersDestination(t *testing.T) {
	ctx := context.Background()
	driverID := primitive.NewObjectID()
	tripRepo, _, svc := newTripFixture(nil)

	pune := models.NewLocation(18.5204, 73.8567)
	mumbai := models.NewLocation(19.0760, 72.8777)
	nagpur := models.NewLocation(21.1458, 79.0882)

	toMumbai := seedTrip(tripRepo, driverID, 2, models.TripStatusScheduled)
	toMumbai.SourceLocation = pune
	toMumbai.DestinationLocation = mumbai
	tripRepo.trips[toMumbai.ID] = toMumbai

	toNagpur := seedTrip(tripRepo, primitive.NewObjectID(), 2, models.TripStatusScheduled)
	toNagpur.SourceLocation = pune
	toNagpur.DestinationLocation = nagpur
	tripRepo.trips[toNagpur.ID] = toNagpur

	trips, err := svc.SearchNearby(ctx, 18.52, 73.86, 19.07, 72.88, 10)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, toMumbai.ID, trips[0].ID)
}

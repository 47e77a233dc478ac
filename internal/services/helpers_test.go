package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"gocarpool/internal/models"
	"gocarpool/internal/repositories/interfaces"
	"gocarpool/internal/utils"
	"gocarpool/pkg/logger"
	"gocarpool/pkg/maps"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *logger.Logger {
	log, _ := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text"})
	return log
}

// fakeTripRepo is an in-memory TripRepository with the same conditional
// update semantics as the mongo implementation.
type fakeTripRepo struct {
	mu    sync.Mutex
	trips map[primitive.ObjectID]*models.Trip
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{trips: make(map[primitive.ObjectID]*models.Trip)}
}

func (r *fakeTripRepo) Create(_ context.Context, trip *models.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if trip.ID.IsZero() {
		trip.ID = primitive.NewObjectID()
	}
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = trip.CreatedAt
	r.trips[trip.ID] = copyTrip(trip)
	return nil
}

func (r *fakeTripRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trip, ok := r.trips[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return copyTrip(trip), nil
}

func (r *fakeTripRepo) ReserveSeat(_ context.Context, id primitive.ObjectID) (*models.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trip, ok := r.trips[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	if trip.AvailableSeats < 1 {
		return nil, interfaces.ErrNoMatch
	}
	trip.AvailableSeats--
	trip.UpdatedAt = time.Now()
	return copyTrip(trip), nil
}

func (r *fakeTripRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, from []models.TripStatus, to models.TripStatus, set map[string]interface{}) (*models.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trip, ok := r.trips[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	matched := false
	for _, s := range from {
		if trip.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return nil, interfaces.ErrNoMatch
	}
	trip.Status = to
	if v, ok := set["actual_start_time"].(time.Time); ok {
		trip.ActualStartTime = &v
	}
	if v, ok := set["actual_end_time"].(time.Time); ok {
		trip.ActualEndTime = &v
	}
	trip.UpdatedAt = time.Now()
	return copyTrip(trip), nil
}

func (r *fakeTripRepo) SetCurrentLocation(_ context.Context, id primitive.ObjectID, loc *models.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	trip, ok := r.trips[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	trip.CurrentLocation = loc
	trip.UpdatedAt = time.Now()
	return nil
}

func (r *fakeTripRepo) SetLiveLocation(_ context.Context, id primitive.ObjectID, loc *models.Location) (*models.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trip, ok := r.trips[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	live := false
	for _, s := range models.LiveStatuses() {
		if trip.Status == s {
			live = true
			break
		}
	}
	if !live {
		return nil, interfaces.ErrNoMatch
	}
	trip.Status = models.TripStatusInProgress
	trip.CurrentLocation = loc
	trip.UpdatedAt = time.Now()
	return copyTrip(trip), nil
}

func (r *fakeTripRepo) Search(_ context.Context, source, destination string, vehicleType *models.VehicleType, p *utils.PaginationParams) ([]*models.Trip, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []*models.Trip
	for _, trip := range r.trips {
		if trip.Status != models.TripStatusScheduled || trip.AvailableSeats < 1 {
			continue
		}
		if source != "" && !strings.Contains(strings.ToLower(trip.Source), strings.ToLower(source)) {
			continue
		}
		if destination != "" && !strings.Contains(strings.ToLower(trip.Destination), strings.ToLower(destination)) {
			continue
		}
		if vehicleType != nil && trip.VehicleType != *vehicleType {
			continue
		}
		matches = append(matches, copyTrip(trip))
	}
	return matches, int64(len(matches)), nil
}

func (r *fakeTripRepo) SearchNearby(_ context.Context, lat, lng, maxDistanceKM float64, limit int64) ([]*models.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []*models.Trip
	for _, trip := range r.trips {
		if trip.Status != models.TripStatusScheduled || trip.AvailableSeats < 1 || trip.SourceLocation == nil {
			continue
		}
		if utils.IsWithinRadius(lat, lng, trip.SourceLocation.Latitude(), trip.SourceLocation.Longitude(), maxDistanceKM) {
			matches = append(matches, copyTrip(trip))
		}
	}
	return matches, nil
}

func copyTrip(t *models.Trip) *models.Trip {
	clone := *t
	return &clone
}

// fakeRequestRepo mirrors the mongo ride request store, including the
// partial unique pending index.
type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]*models.RideRequest

	// afterGet fires once after the next GetByID, outside the lock. Tests
	// use it to interleave a competing mutation into a read-then-update
	// window.
	afterGet func()
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[primitive.ObjectID]*models.RideRequest)}
}

func (r *fakeRequestRepo) Create(_ context.Context, request *models.RideRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.requests {
		if existing.PassengerID == request.PassengerID &&
			existing.TripID == request.TripID &&
			existing.Status == models.RequestStatusPending {
			return interfaces.ErrNoMatch
		}
	}

	request.ID = primitive.NewObjectID()
	request.Status = models.RequestStatusPending
	request.PickupStatus = models.PickupStatusWaiting
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	r.requests[request.ID] = copyRequest(request)
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.RideRequest, error) {
	r.mu.Lock()
	request, ok := r.requests[id]
	var clone *models.RideRequest
	if ok {
		clone = copyRequest(request)
	}
	hook := r.afterGet
	r.afterGet = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return clone, nil
}

func (r *fakeRequestRepo) HasPending(_ context.Context, passengerID, tripID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, request := range r.requests {
		if request.PassengerID == passengerID && request.TripID == tripID && request.Status == models.RequestStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRequestRepo) ResolvePending(_ context.Context, id primitive.ObjectID, to models.RequestStatus) (*models.RideRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	request, ok := r.requests[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	if request.Status != models.RequestStatusPending {
		return nil, interfaces.ErrNoMatch
	}
	request.Status = to
	request.UpdatedAt = time.Now()
	return copyRequest(request), nil
}

func (r *fakeRequestRepo) Reopen(_ context.Context, id primitive.ObjectID) (*models.RideRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	request, ok := r.requests[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	if request.Status != models.RequestStatusApproved {
		return nil, interfaces.ErrNoMatch
	}
	request.Status = models.RequestStatusPending
	request.UpdatedAt = time.Now()
	return copyRequest(request), nil
}

func (r *fakeRequestRepo) AdvancePickup(_ context.Context, id primitive.ObjectID, from, to models.PickupStatus) (*models.RideRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	request, ok := r.requests[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	if request.Status != models.RequestStatusApproved || request.PickupStatus != from {
		return nil, interfaces.ErrNoMatch
	}
	request.PickupStatus = to
	now := time.Now()
	switch to {
	case models.PickupStatusPickedUp:
		request.PickedUpAt = &now
	case models.PickupStatusDroppedOff:
		request.DroppedOffAt = &now
	}
	request.UpdatedAt = now
	return copyRequest(request), nil
}

func (r *fakeRequestRepo) ListByTrip(_ context.Context, tripID primitive.ObjectID) ([]*models.RideRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []*models.RideRequest
	for _, request := range r.requests {
		if request.TripID == tripID {
			matches = append(matches, copyRequest(request))
		}
	}
	return matches, nil
}

func (r *fakeRequestRepo) ListByPassenger(_ context.Context, passengerID primitive.ObjectID) ([]*models.RideRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []*models.RideRequest
	for _, request := range r.requests {
		if request.PassengerID == passengerID {
			matches = append(matches, copyRequest(request))
		}
	}
	return matches, nil
}

func copyRequest(r *models.RideRequest) *models.RideRequest {
	clone := *r
	return &clone
}

// recordedEvent is one hub notification captured by the fake.
type recordedEvent struct {
	Room  string
	User  primitive.ObjectID
	Event string
	Data  map[string]interface{}
}

type fakeHub struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (h *fakeHub) NotifyUser(userID primitive.ObjectID, event string, data map[string]interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, recordedEvent{User: userID, Event: event, Data: data})
}

func (h *fakeHub) NotifyTripRoom(tripID primitive.ObjectID, event string, data map[string]interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, recordedEvent{Room: "trip_" + tripID.Hex(), Event: event, Data: data})
}

func (h *fakeHub) eventsNamed(event string) []recordedEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	var matches []recordedEvent
	for _, e := range h.events {
		if e.Event == event {
			matches = append(matches, e)
		}
	}
	return matches
}

// stubRoutingProvider returns canned responses; zero value fails every call.
type stubRoutingProvider struct {
	geocode    func(address string) (*maps.GeocodeResponse, error)
	directions func(req *maps.DirectionsRequest) (*maps.DirectionsResponse, error)
}

func (p *stubRoutingProvider) Geocode(_ context.Context, address string) (*maps.GeocodeResponse, error) {
	if p.geocode == nil {
		return nil, context.DeadlineExceeded
	}
	return p.geocode(address)
}

func (p *stubRoutingProvider) GetDirections(_ context.Context, req *maps.DirectionsRequest) (*maps.DirectionsResponse, error) {
	if p.directions == nil {
		return nil, context.DeadlineExceeded
	}
	return p.directions(req)
}

func seedTrip(repo *fakeTripRepo, driverID primitive.ObjectID, seats int, status models.TripStatus) *models.Trip {
	trip := &models.Trip{
		DriverID:       driverID,
		VehicleType:    models.VehicleTypeCar,
		TotalSeats:     seats,
		AvailableSeats: seats,
		Source:         "Pune",
		Destination:    "Mumbai",
		ScheduledTime:  time.Now().Add(24 * time.Hour),
		Status:         status,
	}
	repo.Create(context.Background(), trip)
	return trip
}

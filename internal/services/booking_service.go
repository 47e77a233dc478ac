package services

import (
	"context"
	"errors"
	"time"

	"gocarpool/internal/models"
	"gocarpool/internal/repositories/interfaces"
	"gocarpool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingService interface {
	RequestRide(ctx context.Context, passengerID, tripID primitive.ObjectID) (*models.RideRequest, error)
	Approve(ctx context.Context, driverID, requestID primitive.ObjectID) (*models.RideRequest, error)
	Reject(ctx context.Context, driverID, requestID primitive.ObjectID) (*models.RideRequest, error)
	MarkPickedUp(ctx context.Context, driverID, requestID primitive.ObjectID) (*models.RideRequest, error)
	MarkDroppedOff(ctx context.Context, driverID, requestID primitive.ObjectID) (*models.RideRequest, error)
	ListTripRequests(ctx context.Context, driverID, tripID primitive.ObjectID) ([]*models.RideRequest, error)
	ListMyRequests(ctx context.Context, passengerID primitive.ObjectID) ([]*models.RideRequest, error)
}

type bookingService struct {
	tripRepo    interfaces.TripRepository
	requestRepo interfaces.RideRequestRepository
	hub         NotificationHub
	log         *logger.Logger
}

func NewBookingService(
	tripRepo interfaces.TripRepository,
	requestRepo interfaces.RideRequestRepository,
	hub NotificationHub,
	log *logger.Logger,
) BookingService {
	return &bookingService{
		tripRepo:    tripRepo,
		requestRepo: requestRepo,
		hub:         hub,
		log:         log,
	}
}

func (s *bookingService) RequestRide(ctx context.Context, passengerID, tripID primitive.ObjectID) (*models.RideRequest, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, mapTripErr(err)
	}

	if trip.DriverID == passengerID {
		return nil, ErrForbidden
	}
	if trip.Status != models.TripStatusScheduled {
		return nil, NewInvalidTransition(trip.Status, models.TripStatusScheduled)
	}
	// Pre-check only; the atomic decrement at approval stays authoritative.
	if trip.AvailableSeats < 1 {
		return nil, ErrSeatUnavailable
	}

	pending, err := s.requestRepo.HasPending(ctx, passengerID, tripID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrDuplicateRequest
	}

	request := &models.RideRequest{
		PassengerID: passengerID,
		TripID:      tripID,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		if errors.Is(err, interfaces.ErrNoMatch) {
			return nil, ErrDuplicateRequest
		}
		return nil, err
	}

	s.notifyUser(trip.DriverID, EventRequestReceived, map[string]interface{}{
		"request_id":   request.ID.Hex(),
		"trip_id":      tripID.Hex(),
		"passenger_id": passengerID.Hex(),
	})
	s.log.LogBookingEvent(request.ID, "ride_requested", map[string]interface{}{
		"trip_id":      tripID.Hex(),
		"passenger_id": passengerID.Hex(),
	})

	return request, nil
}

// Approve flips the request pending -> approved first, so a concurrent
// reject and an approval cannot both win, then reserves the seat. The
// store-level decrement is the only arbiter between concurrent approvals;
// on a lost seat race the request is reopened and stays pending.
func (s *bookingService) Approve(ctx context.Context, driverID, requestID primitive.ObjectID) (*models.RideRequest, error) {
	request, trip, err := s.loadForDriver(ctx, driverID, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, ErrRequestNotPending
	}

	approved, err := s.requestRepo.ResolvePending(ctx, requestID, models.RequestStatusApproved)
	if err != nil {
		return nil, mapRequestErr(err)
	}

	reserved, err := s.tripRepo.ReserveSeat(ctx, trip.ID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNoMatch) {
			if _, reopenErr := s.requestRepo.Reopen(ctx, requestID); reopenErr != nil {
				s.log.WithError(reopenErr).WithField("request_id", requestID.Hex()).
					Error("failed to reopen request after losing seat reservation")
			}
			return nil, ErrSeatUnavailable
		}
		return nil, mapTripErr(err)
	}

	s.notifyUser(approved.PassengerID, EventRequestApproved, map[string]interface{}{
		"request_id": approved.ID.Hex(),
		"trip_id":    trip.ID.Hex(),
	})
	s.notifyTripRoom(trip.ID, EventSeatUpdate, map[string]interface{}{
		"trip_id":         trip.ID.Hex(),
		"available_seats": reserved.AvailableSeats,
	})
	s.log.LogBookingEvent(requestID, "request_approved", map[string]interface{}{
		"trip_id":         trip.ID.Hex(),
		"available_seats": reserved.AvailableSeats,
	})

	return approved, nil
}

func (s *bookingService) Reject(ctx context.Context, driverID, requestID primitive.ObjectID) (*models.RideRequest, error) {
	request, trip, err := s.loadForDriver(ctx, driverID, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, ErrRequestNotPending
	}

	// No seat side effect: rejection never touches the counter.
	rejected, err := s.requestRepo.ResolvePending(ctx, requestID, models.RequestStatusRejected)
	if err != nil {
		return nil, mapRequestErr(err)
	}

	s.notifyUser(rejected.PassengerID, EventRequestRejected, map[string]interface{}{
		"request_id": rejected.ID.Hex(),
		"trip_id":    trip.ID.Hex(),
	})
	s.log.LogBookingEvent(requestID, "request_rejected", map[string]interface{}{
		"trip_id": trip.ID.Hex(),
	})

	return rejected, nil
}

func (s *bookingService) MarkPickedUp(ctx context.Context, driverID, requestID primitive.ObjectID) (*models.RideRequest, error) {
	return s.advancePickup(ctx, driverID, requestID, models.PickupStatusWaiting, models.PickupStatusPickedUp, EventPickedUp)
}

func (s *bookingService) MarkDroppedOff(ctx context.Context, driverID, requestID primitive.ObjectID) (*models.RideRequest, error) {
	return s.advancePickup(ctx, driverID, requestID, models.PickupStatusPickedUp, models.PickupStatusDroppedOff, EventDroppedOff)
}

func (s *bookingService) advancePickup(ctx context.Context, driverID, requestID primitive.ObjectID, from, to models.PickupStatus, event string) (*models.RideRequest, error) {
	_, trip, err := s.loadForDriver(ctx, driverID, requestID)
	if err != nil {
		return nil, err
	}

	updated, err := s.requestRepo.AdvancePickup(ctx, requestID, from, to)
	if err != nil {
		if errors.Is(err, interfaces.ErrNoMatch) {
			return nil, ErrPickupOrder
		}
		return nil, mapRequestErr(err)
	}

	data := map[string]interface{}{
		"request_id":   updated.ID.Hex(),
		"trip_id":      trip.ID.Hex(),
		"passenger_id": updated.PassengerID.Hex(),
		"timestamp":    time.Now().Unix(),
	}
	s.notifyUser(updated.PassengerID, event, data)
	s.notifyTripRoom(trip.ID, event, data)
	s.log.LogBookingEvent(requestID, event, map[string]interface{}{
		"trip_id": trip.ID.Hex(),
	})

	return updated, nil
}

func (s *bookingService) ListTripRequests(ctx context.Context, driverID, tripID primitive.ObjectID) ([]*models.RideRequest, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, mapTripErr(err)
	}
	if trip.DriverID != driverID {
		return nil, ErrForbidden
	}

	return s.requestRepo.ListByTrip(ctx, tripID)
}

func (s *bookingService) ListMyRequests(ctx context.Context, passengerID primitive.ObjectID) ([]*models.RideRequest, error) {
	return s.requestRepo.ListByPassenger(ctx, passengerID)
}

// loadForDriver fetches a request plus its trip and verifies the caller owns
// the trip.
func (s *bookingService) loadForDriver(ctx context.Context, driverID, requestID primitive.ObjectID) (*models.RideRequest, *models.Trip, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, mapRequestErr(err)
	}

	trip, err := s.tripRepo.GetByID(ctx, request.TripID)
	if err != nil {
		return nil, nil, mapTripErr(err)
	}
	if trip.DriverID != driverID {
		return nil, nil, ErrForbidden
	}

	return request, trip, nil
}

func (s *bookingService) notifyUser(userID primitive.ObjectID, event string, data map[string]interface{}) {
	if s.hub != nil {
		s.hub.NotifyUser(userID, event, data)
	}
}

func (s *bookingService) notifyTripRoom(tripID primitive.ObjectID, event string, data map[string]interface{}) {
	if s.hub != nil {
		s.hub.NotifyTripRoom(tripID, event, data)
	}
}

func mapRequestErr(err error) error {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return ErrRequestNotFound
	case errors.Is(err, interfaces.ErrNoMatch):
		return ErrRequestNotPending
	default:
		return err
	}
}

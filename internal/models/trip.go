package models

import (
	"time"

	"gocarpool/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TripStatus string
type VehicleType string

const (
	TripStatusScheduled  TripStatus = "scheduled"
	TripStatusStarted    TripStatus = "started"
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCancelled  TripStatus = "cancelled"

	VehicleTypeCar  VehicleType = "car"
	VehicleTypeBike VehicleType = "bike"
)

type Trip struct {
	ID                  primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	DriverID            primitive.ObjectID `json:"driver_id" bson:"driver_id"`
	VehicleType         VehicleType        `json:"vehicle_type" bson:"vehicle_type"`
	TotalSeats          int                `json:"total_seats" bson:"total_seats"`
	AvailableSeats      int                `json:"available_seats" bson:"available_seats"`
	Source              string             `json:"source" bson:"source"`
	Destination         string             `json:"destination" bson:"destination"`
	SourceLocation      *Location          `json:"source_location,omitempty" bson:"source_location,omitempty"`
	DestinationLocation *Location          `json:"destination_location,omitempty" bson:"destination_location,omitempty"`
	Route               *Route             `json:"route,omitempty" bson:"route,omitempty"`
	ScheduledTime       time.Time          `json:"scheduled_time" bson:"scheduled_time"`
	ActualStartTime     *time.Time         `json:"actual_start_time,omitempty" bson:"actual_start_time,omitempty"`
	ActualEndTime       *time.Time         `json:"actual_end_time,omitempty" bson:"actual_end_time,omitempty"`
	Status              TripStatus         `json:"status" bson:"status"`
	CurrentLocation     *Location          `json:"current_location,omitempty" bson:"current_location,omitempty"`
	EstimatedCost       float64            `json:"estimated_cost" bson:"estimated_cost"`
	CreatedAt           time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at" bson:"updated_at"`
}

// tripTransitions is the directed graph of legal status changes. Completed
// and cancelled are terminal. A scheduled trip may be completed directly;
// double completion is still rejected because completed has no out-edges.
var tripTransitions = map[TripStatus][]TripStatus{
	TripStatusScheduled:  {TripStatusStarted, TripStatusCompleted, TripStatusCancelled},
	TripStatusStarted:    {TripStatusInProgress, TripStatusCompleted, TripStatusCancelled},
	TripStatusInProgress: {TripStatusCompleted, TripStatusCancelled},
	TripStatusCompleted:  {},
	TripStatusCancelled:  {},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to TripStatus) bool {
	for _, s := range tripTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s TripStatus) IsTerminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// LiveStatuses are the statuses during which the driver's position is live
// telemetry rather than an administrative correction.
func LiveStatuses() []TripStatus {
	return []TripStatus{TripStatusStarted, TripStatusInProgress}
}

// SeatRange returns the allowed seat bounds for a vehicle type.
func (v VehicleType) SeatRange() (min, max int) {
	if v == VehicleTypeBike {
		return utils.BikeSeats, utils.BikeSeats
	}
	return utils.CarMinSeats, utils.CarMaxSeats
}

func (v VehicleType) Valid() bool {
	return v == VehicleTypeCar || v == VehicleTypeBike
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RequestStatus string
type PickupStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"

	PickupStatusWaiting    PickupStatus = "waiting"
	PickupStatusPickedUp   PickupStatus = "picked_up"
	PickupStatusDroppedOff PickupStatus = "dropped_off"
)

// RideRequest links a passenger to one seat on a trip. Status is terminal
// once approved or rejected; PickupStatus only advances while approved.
type RideRequest struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PassengerID  primitive.ObjectID `json:"passenger_id" bson:"passenger_id"`
	TripID       primitive.ObjectID `json:"trip_id" bson:"trip_id"`
	Status       RequestStatus      `json:"status" bson:"status"`
	PickupStatus PickupStatus       `json:"pickup_status" bson:"pickup_status"`
	PickedUpAt   *time.Time         `json:"picked_up_at,omitempty" bson:"picked_up_at,omitempty"`
	DroppedOffAt *time.Time         `json:"dropped_off_at,omitempty" bson:"dropped_off_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

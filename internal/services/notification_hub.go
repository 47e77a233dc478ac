package services

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event names pushed over the real-time channel.
const (
	EventRequestReceived = "request_received"
	EventRequestApproved = "request_approved"
	EventRequestRejected = "request_rejected"
	EventPickedUp        = "picked_up"
	EventDroppedOff      = "dropped_off"
	EventSeatUpdate      = "seat_update"
	EventTripStatus      = "trip_status"
)

// NotificationHub fans out events to a user's personal room or to all
// watchers of a trip. The websocket transport implements it; tests inject a
// recording fake. Injected explicitly so booking and lifecycle code never
// reach for a process-wide transport singleton.
type NotificationHub interface {
	NotifyUser(userID primitive.ObjectID, event string, data map[string]interface{})
	NotifyTripRoom(tripID primitive.ObjectID, event string, data map[string]interface{})
}

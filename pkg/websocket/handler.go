package websocket

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gocarpool/internal/config"
	"gocarpool/internal/models"
	"gocarpool/internal/services"
	"gocarpool/internal/utils"
	"gocarpool/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler owns the hub and the gin upgrade endpoint, and fans trip and
// booking events out to rooms. It satisfies services.NotificationHub.
type Handler struct {
	hub      *Hub
	cfg      *config.WebSocketConfig
	secret   string
	upgrader websocket.Upgrader
	log      *logger.Logger

	tripSvc services.TripService
	etaSvc  services.ETAService
}

func NewHandler(cfg *config.WebSocketConfig, secret string, log *logger.Logger) *Handler {
	hub := NewHub(log)
	go hub.Run()

	return &Handler{
		hub:    hub,
		cfg:    cfg,
		secret: secret,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
	}
}

// Attach wires the domain services after construction. The handler notifies
// on behalf of those services, so the reference is mutual and one side has
// to be set late.
func (h *Handler) Attach(tripSvc services.TripService, etaSvc services.ETAService) {
	h.tripSvc = tripSvc
	h.etaSvc = etaSvc
}

func (h *Handler) Hub() *Hub {
	return h.hub
}

func originChecker(allowed []string) func(*http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		return set[r.Header.Get("Origin")]
	}
}

// HandleWebSocket authenticates the ?token= query parameter and upgrades the
// connection. Auth happens here rather than in middleware because browsers
// cannot set headers on websocket dials.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.UnauthorizedResponse(c)
		return
	}

	claims, err := utils.ValidateToken(token, h.secret)
	if err != nil {
		utils.UnauthorizedResponse(c)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := newClient(h.hub, h, conn, claims.UserID, claims.IsDriver)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// dispatch handles one inbound client message.
func (h *Handler) dispatch(c *Client, msg *Message) {
	switch msg.Type {
	case "join_trip":
		h.handleJoinTrip(c, msg)
	case "leave_trip":
		h.handleLeaveTrip(c, msg)
	case "location_update":
		h.handleLocationUpdate(c, msg)
	case "start_trip":
		h.handleLifecycle(c, msg, h.tripSvc.Start)
	case "complete_trip":
		h.handleLifecycle(c, msg, h.tripSvc.Complete)
	default:
		c.sendError("unknown message type: " + msg.Type)
	}
}

func (h *Handler) handleJoinTrip(c *Client, msg *Message) {
	tripID, ok := tripIDFrom(msg)
	if !ok {
		c.sendError("join_trip requires a valid trip_id")
		return
	}

	result, err := h.tripSvc.Get(c.requestContext(), tripID)
	if err != nil {
		c.sendError("trip not found")
		return
	}
	trip := result.Trip

	h.hub.JoinRoom(c, TripRoom(tripID))

	// Snapshot so a late joiner does not wait for the next driver ping.
	snapshot := map[string]interface{}{
		"trip_id":         trip.ID.Hex(),
		"status":          trip.Status,
		"available_seats": trip.AvailableSeats,
	}
	if trip.CurrentLocation != nil {
		snapshot["current_location"] = trip.CurrentLocation
		if eta := h.etaSvc.Estimate(c.requestContext(), trip.CurrentLocation, trip.DestinationLocation); eta != nil {
			snapshot["eta"] = eta
		}
	}
	c.sendMessage(Message{
		Type:      "trip_snapshot",
		RoomID:    TripRoom(tripID),
		Timestamp: time.Now().Unix(),
		Data:      snapshot,
	})
}

func (h *Handler) handleLeaveTrip(c *Client, msg *Message) {
	tripID, ok := tripIDFrom(msg)
	if !ok {
		c.sendError("leave_trip requires a valid trip_id")
		return
	}
	h.hub.LeaveRoom(c, TripRoom(tripID))
}

// handleLocationUpdate is the driver telemetry path: persist the point,
// compute a fresh ETA and push both to everyone watching the trip.
func (h *Handler) handleLocationUpdate(c *Client, msg *Message) {
	tripID, ok := tripIDFrom(msg)
	if !ok {
		c.sendError("location_update requires a valid trip_id")
		return
	}
	lat, lng, ok := locationFrom(msg)
	if !ok {
		c.sendError("location_update requires a location with lat and lng")
		return
	}

	trip, err := h.tripSvc.RecordLiveLocation(c.requestContext(), tripID, c.UserID, lat, lng)
	if err != nil {
		c.sendError(locationErrReason(err))
		return
	}

	data := map[string]interface{}{
		"trip_id": trip.ID.Hex(),
		"status":  trip.Status,
		"location": map[string]interface{}{
			"lat": lat,
			"lng": lng,
		},
	}
	if eta := h.etaSvc.Estimate(c.requestContext(), trip.CurrentLocation, trip.DestinationLocation); eta != nil {
		data["eta"] = eta
	}

	h.hub.SendToRoom(TripRoom(tripID), Message{
		Type:      "driver_location",
		RoomID:    TripRoom(tripID),
		UserID:    c.UserID,
		Timestamp: time.Now().Unix(),
		Data:      data,
	})
}

type lifecycleFn func(ctx context.Context, tripID, callerID primitive.ObjectID) (*models.Trip, error)

func (h *Handler) handleLifecycle(c *Client, msg *Message, fn lifecycleFn) {
	tripID, ok := tripIDFrom(msg)
	if !ok {
		c.sendError(msg.Type + " requires a valid trip_id")
		return
	}

	if _, err := fn(c.requestContext(), tripID, c.UserID); err != nil {
		c.sendError(locationErrReason(err))
		return
	}
	// Room broadcast happens inside the trip service.
}

func locationErrReason(err error) string {
	var transition *services.InvalidTransitionError
	switch {
	case errors.Is(err, services.ErrTripNotFound):
		return "trip not found"
	case errors.Is(err, services.ErrForbidden):
		return "only the trip driver may do that"
	case errors.As(err, &transition):
		return transition.Error()
	default:
		return "operation failed"
	}
}

// locationFrom reads the nested location object of a location_update.
func locationFrom(msg *Message) (lat, lng float64, ok bool) {
	loc, ok := msg.Data["location"].(map[string]interface{})
	if !ok {
		return 0, 0, false
	}
	lat, latOK := loc["lat"].(float64)
	lng, lngOK := loc["lng"].(float64)
	if !latOK || !lngOK {
		return 0, 0, false
	}
	return lat, lng, true
}

func tripIDFrom(msg *Message) (primitive.ObjectID, bool) {
	raw, ok := msg.Data["trip_id"].(string)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// NotifyUser implements services.NotificationHub.
func (h *Handler) NotifyUser(userID primitive.ObjectID, event string, data map[string]interface{}) {
	h.hub.SendToUser(userID, Message{
		Type:      event,
		UserID:    userID,
		Timestamp: time.Now().Unix(),
		Data:      data,
	})
}

// NotifyTripRoom implements services.NotificationHub.
func (h *Handler) NotifyTripRoom(tripID primitive.ObjectID, event string, data map[string]interface{}) {
	h.hub.SendToRoom(TripRoom(tripID), Message{
		Type:      event,
		RoomID:    TripRoom(tripID),
		Timestamp: time.Now().Unix(),
		Data:      data,
	})
}

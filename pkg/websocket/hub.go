package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"gocarpool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hub tracks connected clients and their room memberships. Register and
// unregister flow through channels; room maps are guarded by the mutex so
// event producers can push without going through Run.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mutex      sync.RWMutex
	log        *logger.Logger
}

// Message is the wire envelope for both directions.
type Message struct {
	Type      string                 `json:"type"`
	RoomID    string                 `json:"room_id,omitempty"`
	UserID    primitive.ObjectID     `json:"user_id,omitempty"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true

	// Every client lands in their personal room for direct notifications.
	h.joinRoom(client, UserRoom(client.UserID))

	h.log.WithUserID(client.UserID).Debug("websocket client registered")

	welcome := Message{
		Type:      "welcome",
		UserID:    client.UserID,
		Timestamp: time.Now().Unix(),
		Data: map[string]interface{}{
			"message": "connected",
		},
	}
	h.sendToClientLocked(client, welcome)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	// Always sweep rooms: a slow-consumer drop may have removed the client
	// from h.clients already while memberships linger.
	h.dropClientLocked(client)

	h.log.WithUserID(client.UserID).Debug("websocket client unregistered")
}

// dropClientLocked fully detaches a client: the send channel is closed at
// most once and the client leaves every room it joined, so no later room
// delivery can hit a closed channel. Callers hold the write lock.
func (h *Hub) dropClientLocked(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}

	for roomID, room := range h.rooms {
		if _, exists := room[client]; exists {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	for roomID := range client.rooms {
		delete(client.rooms, roomID)
	}
}

// SendToRoom delivers a message to every member of a room. Clients whose
// send buffer is full are dropped from the hub entirely; the slow consumer
// loses the connection, the room keeps flowing.
func (h *Hub) SendToRoom(roomID string, message Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room, exists := h.rooms[roomID]
	if !exists {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.log.WithError(err).Error("marshal room message")
		return
	}
	for client := range room {
		select {
		case client.send <- data:
		default:
			h.dropClientLocked(client)
		}
	}
}

func (h *Hub) SendToUser(userID primitive.ObjectID, message Message) {
	h.SendToRoom(UserRoom(userID), message)
}

func (h *Hub) sendToClientLocked(client *Client, message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
		h.dropClientLocked(client)
	}
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.joinRoom(client, roomID)
}

func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if room, exists := h.rooms[roomID]; exists {
		delete(room, client)
		delete(client.rooms, roomID)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// RoomSize reports current membership.
func (h *Hub) RoomSize(roomID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[roomID])
}

func UserRoom(userID primitive.ObjectID) string {
	return "user_" + userID.Hex()
}

func TripRoom(tripID primitive.ObjectID) string {
	return "trip_" + tripID.Hex()
}

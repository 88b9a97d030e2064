package util

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Frame is the envelope written to sockets.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// IncomingFrame is the envelope read from sockets.
type IncomingFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type Client struct {
	UserID uint
	Name   string
	Conn   *websocket.Conn
	Send   chan []byte
	Stop   chan struct{}

	rooms map[string]struct{}
}

func NewClient(userID uint, name string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Name:   name,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Stop:   make(chan struct{}),
		rooms:  make(map[string]struct{}),
	}
}

// Hub tracks connected sockets and the rooms they joined.
type Hub struct {
	clients    map[*Client]struct{}
	rooms      map[string]map[*Client]struct{}
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) RegisterClient(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Run serves registrations until ctx is cancelled, then stops every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client registered", zap.Uint("user_id", client.UserID), zap.Int("connections", total))

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.removeLocked(client)
				h.log.Debug("client unregistered", zap.Uint("user_id", client.UserID), zap.Int("connections", len(h.clients)))
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.removeLocked(client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) removeLocked(client *Client) {
	for room := range client.rooms {
		h.leaveLocked(client, room)
	}
	delete(h.clients, client)
	close(client.Stop)
}

// Join adds client to room. Clients already stopped by the hub are ignored.
func (h *Hub) Join(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-client.Stop:
		return
	default:
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[client] = struct{}{}
	client.rooms[room] = struct{}{}
}

func (h *Hub) Leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(client, room)
}

func (h *Hub) leaveLocked(client *Client, room string) {
	delete(client.rooms, room)
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) InRoom(client *Client, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := client.rooms[room]
	return ok
}

// RoomSize returns the number of sockets currently joined to room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// EmitToRoom sends an event to every socket joined to room.
func (h *Hub) EmitToRoom(room, event string, data any) {
	msg, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		h.log.Error("marshal frame", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		h.deliver(client, msg)
	}
}

// Emit sends an event to a single socket.
func (h *Hub) Emit(client *Client, event string, data any) {
	msg, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		h.log.Error("marshal frame", zap.String("event", event), zap.Error(err))
		return
	}
	h.deliver(client, msg)
}

func (h *Hub) deliver(client *Client, msg []byte) {
	select {
	case <-client.Stop:
	case client.Send <- msg:
	default:
		h.log.Warn("send buffer full, dropping frame", zap.Uint("user_id", client.UserID))
	}
}

// Package hub owns the live websocket connections, their room membership,
// and all event fan-out.
package hub

import (
	"encoding/json"
	"sync"

	pkglog "github.com/NeelPanchal05/QuickChat/pkg/log"
)

// Hub manages all WebSocket connections. A single Run goroutine drains the
// broadcast channel, so events enqueued for one room are delivered to its
// members in enqueue order.
type Hub struct {
	clients    map[string]*Client
	rooms      map[string]map[string]*Client // conversationID -> connID -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *envelope
	mu         sync.RWMutex
}

// envelope is one queued fan-out. An empty RoomID targets every connection.
type envelope struct {
	RoomID  string
	Data    []byte
	Exclude string // conn id to skip
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *envelope, 256),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	l := pkglog.L()
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			l.Debug().Str(pkglog.FieldConnID, client.ID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				for roomID, members := range h.rooms {
					delete(members, client.ID)
					if len(members) == 0 {
						delete(h.rooms, roomID)
					}
				}
				delete(h.clients, client.ID)
				client.closeSend()
			}
			h.mu.Unlock()
			l.Debug().Str(pkglog.FieldConnID, client.ID).Msg("client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			if msg.RoomID == "" {
				for connID, client := range h.clients {
					if connID == msg.Exclude {
						continue
					}
					h.deliver(client, msg.Data)
				}
			} else if members, ok := h.rooms[msg.RoomID]; ok {
				for connID, client := range members {
					if connID == msg.Exclude {
						continue
					}
					h.deliver(client, msg.Data)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// deliver enqueues data for one client without blocking the fan-out loop.
// A full send buffer drops the event for that client only.
func (h *Hub) deliver(client *Client, data []byte) {
	if !client.enqueue(data) {
		pkglog.L().Warn().
			Str(pkglog.FieldConnID, client.ID).
			Msg("send buffer full, dropping event")
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub and every room it joined.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// JoinRoom adds a client to a conversation room, creating it on first join.
func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][client.ID] = client
	pkglog.L().Info().
		Str(pkglog.FieldConnID, client.ID).
		Str(pkglog.FieldConversationID, roomID).
		Msg("client joined room")
}

// LeaveRoom removes a client from a room.
func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[roomID]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// BroadcastToRoom sends an event to every member of a room except the
// excluded connection. Pass an empty exclude to reach everyone.
func (h *Hub) BroadcastToRoom(roomID string, event interface{}, exclude string) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.broadcast <- &envelope{RoomID: roomID, Data: data, Exclude: exclude}
	return nil
}

// BroadcastAll sends an event to every connected client except the excluded
// connection. Used for the global user_online / user_offline events.
func (h *Hub) BroadcastAll(event interface{}, exclude string) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.broadcast <- &envelope{Data: data, Exclude: exclude}
	return nil
}

// SendToClient sends an event to one specific connection. Delivery to an
// unknown connection is a silent no-op.
func (h *Hub) SendToClient(connID string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()

	if !ok {
		return nil
	}
	h.deliver(client, data)
	return nil
}

// RoomSize returns the number of connections joined to a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

package services

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/sumeghna/collaborative-whiteboard/internal/models"
)

// Hub fans an accepted event out to a room's connections: all of them,
// all but the sender, or a single client. Delivery is best-effort per
// recipient; a slow or dead peer is dropped, never waited on.
//
// Registration and fan-out run synchronously under the hub lock. Callers
// hold the room lock across a mutation and its relay, so events for one
// room reach every send queue in mutation order.
type Hub struct {
	// Room connections: roomId -> set of clients
	rooms map[string]map[*Client]bool

	// Client to participant mapping
	clientParticipant map[*Client]string

	metrics *Metrics

	mu sync.RWMutex
}

func NewHub(metrics *Metrics) *Hub {
	return &Hub{
		rooms:             make(map[string]map[*Client]bool),
		clientParticipant: make(map[*Client]string),
		metrics:           metrics,
	}
}

func (h *Hub) Register(roomID string, c *Client, participantID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][c] = true
	h.clientParticipant[c] = participantID

	log.Printf("✓ Connection registered: room=%s participant=%s (connections in room: %d)",
		roomID, participantID, len(h.rooms[roomID]))
}

func (h *Hub) Unregister(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if connections, ok := h.rooms[roomID]; ok {
		if _, exists := connections[c]; exists {
			delete(connections, c)
			delete(h.clientParticipant, c)

			if len(connections) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
}

// BroadcastToRoom relays an event to every connection in the room,
// including the sender's.
func (h *Hub) BroadcastToRoom(roomID string, msg *models.WSMessage) {
	h.broadcast(roomID, nil, msg)
}

// BroadcastToOthers relays an event to every connection in the room except
// the excluded one.
func (h *Hub) BroadcastToOthers(roomID string, exclude *Client, msg *models.WSMessage) {
	h.broadcast(roomID, exclude, msg)
}

func (h *Hub) broadcast(roomID string, exclude *Client, msg *models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		h.metrics.IncrementBroadcastErrors()
		return
	}

	h.mu.RLock()
	recipients := make([]*Client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		if c != exclude {
			recipients = append(recipients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range recipients {
		// Non-blocking: a recipient that cannot keep up is dropped by its
		// own Send, not retried here.
		c.Send(data)
	}
}

// SendToClient delivers an event to a single connection.
func (h *Hub) SendToClient(c *Client, msg *models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		h.metrics.IncrementBroadcastErrors()
		return
	}
	c.Send(data)
}

// ParticipantID reports the participant bound to a registered connection.
func (h *Hub) ParticipantID(c *Client) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	id, ok := h.clientParticipant[c]
	return id, ok
}

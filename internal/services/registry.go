package services

import (
	"log"
	"sync"

	"github.com/sumeghna/collaborative-whiteboard/internal/models"
)

// Registry owns the mapping from room id to live room state. Rooms are
// created lazily on first join and removed when the last participant leaves.
// A room is in the registry iff it has at least one participant, modulo the
// brief window between a leave and its cleanup check.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*models.Room
	metrics *Metrics
}

func NewRegistry(metrics *Metrics) *Registry {
	return &Registry{
		rooms:   make(map[string]*models.Room),
		metrics: metrics,
	}
}

// GetOrCreate returns the room for an id, creating an empty one on first
// call. Callers must check Closed after locking the returned room: a room
// removed between lookup and lock is stale and the lookup must be retried.
func (reg *Registry) GetOrCreate(id string) *models.Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[id]
	if !ok {
		room = models.NewRoom(id)
		reg.rooms[id] = room
		reg.metrics.IncrementRooms()
		log.Printf("✓ Room created: %s", id)
	}
	return room
}

func (reg *Registry) Get(id string) (*models.Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[id]
	return room, ok
}

// Remove deletes a room only when it is still empty. Emptiness is rechecked
// under both locks so a join that raced the leave keeps the room alive.
func (reg *Registry) Remove(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[id]
	if !ok {
		return
	}

	room.Lock()
	if room.ParticipantCount() == 0 {
		room.Close()
		delete(reg.rooms, id)
		reg.metrics.DecrementRooms()
		log.Printf("🚪 Room removed (empty): %s", id)
	}
	room.Unlock()
}

func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// RoomInfo is the read-only view served by the status endpoints.
type RoomInfo struct {
	ID           string   `json:"id"`
	UserCount    int      `json:"userCount"`
	Users        []string `json:"users"`
	DrawingCount int      `json:"drawingCount"`
	MessageCount int      `json:"messageCount"`
}

func (reg *Registry) Snapshot() []RoomInfo {
	reg.mu.RLock()
	rooms := make([]*models.Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.RUnlock()

	infos := make([]RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		infos = append(infos, describeRoom(room))
	}
	return infos
}

func (reg *Registry) Describe(id string) (RoomInfo, bool) {
	room, ok := reg.Get(id)
	if !ok {
		return RoomInfo{}, false
	}
	return describeRoom(room), true
}

func describeRoom(room *models.Room) RoomInfo {
	room.Lock()
	defer room.Unlock()

	users := make([]string, 0, room.ParticipantCount())
	for _, p := range room.Participants() {
		users = append(users, p.Username)
	}

	return RoomInfo{
		ID:           room.ID,
		UserCount:    room.ParticipantCount(),
		Users:        users,
		DrawingCount: room.DrawingCount(),
		MessageCount: room.MessageCount(),
	}
}

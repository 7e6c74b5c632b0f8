package services

import (
	"log"

	"github.com/sumeghna/collaborative-whiteboard/internal/models"
)

// Presence binds connections to rooms: it registers a joiner, announces it
// to the existing members, replays the room's history, and unwinds all of it
// on leave.
type Presence struct {
	registry *Registry
	hub      *Hub
}

func NewPresence(registry *Registry, hub *Hub) *Presence {
	return &Presence{
		registry: registry,
		hub:      hub,
	}
}

// Join adds the connection to a room under the room lock, so the joiner's
// history replay (room-users, load-drawings, load-messages) is queued before
// any live event that is accepted after the join.
func (p *Presence) Join(c *Client, roomID, username string) (*models.Room, *models.Participant) {
	for {
		room := p.registry.GetOrCreate(roomID)
		room.Lock()
		if room.Closed() {
			// Lost a race with the empty-room cleanup; the id now maps to
			// nothing, so look it up again.
			room.Unlock()
			continue
		}

		participant := models.NewParticipant(c.ID, username)
		room.AddParticipant(participant)
		p.hub.Register(roomID, c, participant.ID)

		p.hub.BroadcastToOthers(roomID, c, &models.WSMessage{
			Type:    models.EventUserJoined,
			Payload: participant,
		})

		p.hub.SendToClient(c, &models.WSMessage{
			Type:    models.EventRoomUsers,
			Payload: room.Participants(),
		})
		p.hub.SendToClient(c, &models.WSMessage{
			Type:    models.EventLoadDrawings,
			Payload: room.Drawings(),
		})
		p.hub.SendToClient(c, &models.WSMessage{
			Type:    models.EventLoadMessages,
			Payload: room.Messages(),
		})
		room.Unlock()

		log.Printf("👤 %s joined room %s", username, roomID)
		return room, participant
	}
}

// Leave removes the connection's participant and announces the departure.
// Returns nil when the participant already left; duplicate leaves are
// harmless. The room is dropped from the registry when it empties.
func (p *Presence) Leave(c *Client, room *models.Room) *models.Participant {
	room.Lock()
	participant := room.RemoveParticipant(c.ID)
	if participant == nil {
		room.Unlock()
		return nil
	}

	p.hub.Unregister(room.ID, c)
	p.hub.BroadcastToOthers(room.ID, c, &models.WSMessage{
		Type:    models.EventUserLeft,
		Payload: participant.ID,
	})
	empty := room.ParticipantCount() == 0
	room.Unlock()

	if empty {
		p.registry.Remove(room.ID)
	}

	log.Printf("👋 %s left room %s", participant.Username, room.ID)
	return participant
}

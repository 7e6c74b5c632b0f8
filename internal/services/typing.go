package services

import (
	"sync"
	"time"

	"github.com/sumeghna/collaborative-whiteboard/internal/models"
)

// TypingCoordinator runs the per-participant typing state machine and its
// two timers: an inactivity timer that expires a typing entry after
// stopTimeout without a keystroke, and a coarser clearTimeout that fires a
// room-wide typing-timeout after the last signal. Timers are stored as
// cancellable handles so a newer signal or a disconnect can stop them before
// they fire against stale state.
type TypingCoordinator struct {
	hub          *Hub
	stopTimeout  time.Duration
	clearTimeout time.Duration

	mu      sync.Mutex
	entries map[typingKey]*typingEntry
}

type typingKey struct {
	roomID        string
	participantID string
}

type typingEntry struct {
	room        *models.Room
	client      *Client
	participant *models.Participant
	stopTimer   *time.Timer
	clearTimer  *time.Timer
}

func NewTypingCoordinator(hub *Hub, stopTimeout, clearTimeout time.Duration) *TypingCoordinator {
	return &TypingCoordinator{
		hub:          hub,
		stopTimeout:  stopTimeout,
		clearTimeout: clearTimeout,
		entries:      make(map[typingKey]*typingEntry),
	}
}

// Typing handles a keystroke signal: flags the participant as typing,
// relays the transition to the other members, and refreshes both timers.
func (t *TypingCoordinator) Typing(room *models.Room, c *Client, participant *models.Participant) {
	room.Lock()
	started := room.SetTyping(participant.ID)
	if started {
		t.hub.BroadcastToOthers(room.ID, c, userTypingMessage(participant, true))
	}
	room.Unlock()

	key := typingKey{roomID: room.ID, participantID: participant.ID}

	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		e = &typingEntry{room: room, client: c, participant: participant}
		t.entries[key] = e
	}
	if e.stopTimer != nil {
		e.stopTimer.Stop()
	}
	e.stopTimer = time.AfterFunc(t.stopTimeout, func() { t.expire(key) })
	if e.clearTimer != nil {
		e.clearTimer.Stop()
	}
	e.clearTimer = time.AfterFunc(t.clearTimeout, func() { t.clear(key) })
}

// StopTyping handles an explicit stop signal: the participant goes idle,
// the transition is relayed to the others, and the room-wide typing-timeout
// broadcast is scheduled.
func (t *TypingCoordinator) StopTyping(room *models.Room, c *Client, participant *models.Participant) {
	room.Lock()
	room.ClearTyping(participant.ID)
	t.hub.BroadcastToOthers(room.ID, c, userTypingMessage(participant, false))
	room.Unlock()

	key := typingKey{roomID: room.ID, participantID: participant.ID}

	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		e = &typingEntry{room: room, client: c, participant: participant}
		t.entries[key] = e
	}
	if e.stopTimer != nil {
		e.stopTimer.Stop()
		e.stopTimer = nil
	}
	if e.clearTimer != nil {
		e.clearTimer.Stop()
	}
	e.clearTimer = time.AfterFunc(t.clearTimeout, func() { t.clear(key) })
}

// CancelParticipant stops a participant's timers on disconnect so no
// orphaned timer fires against departed state.
func (t *TypingCoordinator) CancelParticipant(roomID, participantID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := typingKey{roomID: roomID, participantID: participantID}
	if e, ok := t.entries[key]; ok {
		if e.stopTimer != nil {
			e.stopTimer.Stop()
		}
		if e.clearTimer != nil {
			e.clearTimer.Stop()
		}
		delete(t.entries, key)
	}
}

// expire fires when a typing participant went stopTimeout without a further
// keystroke; the entry is cleared and a stop transition relayed.
func (t *TypingCoordinator) expire(key typingKey) {
	t.mu.Lock()
	e, ok := t.entries[key]
	if !ok {
		t.mu.Unlock()
		return
	}
	e.stopTimer = nil
	t.mu.Unlock()

	e.room.Lock()
	if e.room.ClearTyping(key.participantID) {
		t.hub.BroadcastToOthers(e.room.ID, e.client, userTypingMessage(e.participant, false))
	}
	e.room.Unlock()
}

// clear fires the coarse room-wide cleanup: every typing indicator in the
// room is dropped regardless of which participant last signaled.
func (t *TypingCoordinator) clear(key typingKey) {
	t.mu.Lock()
	e, ok := t.entries[key]
	if !ok {
		t.mu.Unlock()
		return
	}
	if e.stopTimer != nil {
		e.stopTimer.Stop()
	}
	e.clearTimer = nil
	delete(t.entries, key)
	t.mu.Unlock()

	e.room.Lock()
	e.room.ClearAllTyping()
	t.hub.BroadcastToOthers(e.room.ID, e.client, &models.WSMessage{
		Type: models.EventTypingTimeout,
	})
	e.room.Unlock()
}

func userTypingMessage(p *models.Participant, isTyping bool) *models.WSMessage {
	return &models.WSMessage{
		Type: models.EventUserTyping,
		Payload: models.UserTypingPayload{
			UserID:   p.ID,
			Username: p.Username,
			IsTyping: isTyping,
		},
	}
}

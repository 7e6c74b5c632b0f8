package models

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/sumeghna/collaborative-whiteboard/internal/config"
)

// Room is one isolated collaboration session: its members, the append-only
// drawing log, the bounded chat history and the transient typing set.
//
// A room is single-writer: callers take the room lock for the duration of a
// mutation and the relay of its event, so events for one room are always
// delivered in the order their mutations were accepted. Rooms share no state,
// so events for different rooms proceed in parallel. The accessor and
// mutator methods below expect the lock to be held.
type Room struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time

	participants map[string]*Participant
	drawings     []*DrawingOp
	messages     []*ChatMessage
	typing       map[string]time.Time
	closed       bool
}

func NewRoom(id string) *Room {
	return &Room{
		ID:           id,
		CreatedAt:    time.Now(),
		participants: make(map[string]*Participant),
		typing:       make(map[string]time.Time),
	}
}

func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

// Close marks the room as removed from the registry. A join that raced the
// removal sees the flag and retries against a fresh room.
func (r *Room) Close()       { r.closed = true }
func (r *Room) Closed() bool { return r.closed }

func (r *Room) AddParticipant(p *Participant) {
	r.participants[p.ID] = p
}

// RemoveParticipant returns the departing participant, or nil if it already
// left. Duplicate removals are a no-op by design.
func (r *Room) RemoveParticipant(id string) *Participant {
	p, ok := r.participants[id]
	if !ok {
		return nil
	}
	delete(r.participants, id)
	delete(r.typing, id)
	return p
}

func (r *Room) Participant(id string) *Participant {
	return r.participants[id]
}

func (r *Room) ParticipantCount() int {
	return len(r.participants)
}

func (r *Room) Participants() []*Participant {
	list := make([]*Participant, 0, len(r.participants))
	for _, p := range r.participants {
		list = append(list, p)
	}
	return list
}

// AppendDrawing wraps an opaque payload with server metadata and appends it
// to the drawing log. Payloads are never rejected on shape: malformed
// drawings are a rendering-client concern.
func (r *Room) AppendDrawing(userID string, data json.RawMessage) *DrawingOp {
	op := NewDrawingOp(userID, data)
	r.drawings = append(r.drawings, op)
	return op
}

func (r *Room) Drawings() []*DrawingOp {
	list := make([]*DrawingOp, 0, len(r.drawings))
	return append(list, r.drawings...)
}

func (r *Room) DrawingCount() int {
	return len(r.drawings)
}

// ClearDrawings replaces the drawing log with an empty one. Chat history and
// membership are untouched.
func (r *Room) ClearDrawings() {
	r.drawings = nil
}

// AppendMessage trims the text and appends a chat message, evicting the
// oldest entries beyond the history bound. Returns nil when the trimmed text
// is empty; nothing is appended and nothing should be relayed.
func (r *Room) AppendMessage(sender *Participant, text string) *ChatMessage {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	msg := NewChatMessage(sender, text)
	r.messages = append(r.messages, msg)
	if len(r.messages) > config.MaxChatHistory {
		r.messages = r.messages[len(r.messages)-config.MaxChatHistory:]
	}
	return msg
}

func (r *Room) Messages() []*ChatMessage {
	list := make([]*ChatMessage, 0, len(r.messages))
	return append(list, r.messages...)
}

func (r *Room) MessageCount() int {
	return len(r.messages)
}

// SetTyping flags a participant as typing and returns true when it was
// previously idle.
func (r *Room) SetTyping(id string) bool {
	_, typing := r.typing[id]
	r.typing[id] = time.Now()
	return !typing
}

// ClearTyping returns true when the participant was flagged as typing.
func (r *Room) ClearTyping(id string) bool {
	_, typing := r.typing[id]
	delete(r.typing, id)
	return typing
}

func (r *Room) ClearAllTyping() {
	r.typing = make(map[string]time.Time)
}

func (r *Room) TypingCount() int {
	return len(r.typing)
}

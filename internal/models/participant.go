package models

import (
	"hash/fnv"
	"time"
)

// palette holds the fixed display colors. A participant's color is derived
// from its name, so the same name tends to get the same color across
// sessions. Collisions within a room are accepted.
var palette = []string{
	"#FF6B6B", "#4ECDC4", "#FFD166", "#06D6A0", "#118AB2",
	"#EF476F", "#1B9AAA", "#FF9A76", "#7BC950", "#9D4EDD",
}

type Participant struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"-"`
}

func NewParticipant(id, username string) *Participant {
	return &Participant{
		ID:       id,
		Username: username,
		Color:    ColorFor(username),
		JoinedAt: time.Now(),
	}
}

// ColorFor maps a display name to a palette entry.
func ColorFor(username string) string {
	h := fnv.New32a()
	h.Write([]byte(username))
	return palette[h.Sum32()%uint32(len(palette))]
}

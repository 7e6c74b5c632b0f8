package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage captures the sender's name and color at send time. A later
// name change does not relabel old messages.
type ChatMessage struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Color     string `json:"color"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

func NewChatMessage(sender *Participant, text string) *ChatMessage {
	return &ChatMessage{
		ID:        uuid.New().String(),
		UserID:    sender.ID,
		Username:  sender.Username,
		Color:     sender.Color,
		Message:   text,
		Timestamp: time.Now().UnixMilli(),
	}
}

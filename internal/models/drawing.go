package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DrawingOp is one atomic drawing mutation. The payload is opaque to the
// server: it is stored and relayed byte for byte, interpretation belongs to
// the rendering client.
type DrawingOp struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func NewDrawingOp(userID string, data json.RawMessage) *DrawingOp {
	return &DrawingOp{
		ID:        uuid.New().String(),
		UserID:    userID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

package services_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumeghna/collaborative-whiteboard/internal/models"
)

func TestSession_Join(t *testing.T) {
	t.Run("joiner receives full replay in order", func(t *testing.T) {
		env := newTestEnv()
		conn, _ := env.connect(t)

		env.join(t, conn, "room-1", "alice")

		frames := conn.frames(t)
		require.Len(t, frames, 3)
		assert.Equal(t, models.EventRoomUsers, frames[0].Type)
		assert.Equal(t, models.EventLoadDrawings, frames[1].Type)
		assert.Equal(t, models.EventLoadMessages, frames[2].Type)

		var users []*models.Participant
		require.NoError(t, json.Unmarshal(frames[0].Payload, &users))
		require.Len(t, users, 1)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, models.ColorFor("alice"), users[0].Color)
	})

	t.Run("replay precedes live events generated after the join", func(t *testing.T) {
		env := newTestEnv()
		connA, _ := env.connect(t)
		connB, _ := env.connect(t)

		env.join(t, connA, "room-1", "alice")
		env.join(t, connB, "room-1", "bob")

		connA.queue(t, models.EventDraw, "room-1", map[string]interface{}{"type": "path"})
		waitFor(t, func() bool { return connB.countType(t, models.EventDrawing) == 1 })

		frames := connB.frames(t)
		assert.Equal(t, models.EventRoomUsers, frames[0].Type)
		assert.Equal(t, models.EventLoadDrawings, frames[1].Type)
		assert.Equal(t, models.EventLoadMessages, frames[2].Type)
		assert.Equal(t, models.EventDrawing, frames[3].Type)
	})

	t.Run("existing members are told about the joiner", func(t *testing.T) {
		env := newTestEnv()
		connA, _ := env.connect(t)
		connB, _ := env.connect(t)

		env.join(t, connA, "room-1", "alice")
		env.join(t, connB, "room-1", "bob")

		waitFor(t, func() bool { return connA.countType(t, models.EventUserJoined) == 1 })
		// The joiner never sees its own user-joined
		assert.Zero(t, connB.countType(t, models.EventUserJoined))
	})

	t.Run("empty room id or name is dropped", func(t *testing.T) {
		env := newTestEnv()
		conn, _ := env.connect(t)

		conn.queue(t, models.EventJoinRoom, "", models.JoinPayload{Username: "alice"})
		conn.queue(t, models.EventJoinRoom, "room-1", models.JoinPayload{Username: "   "})

		time.Sleep(20 * time.Millisecond)
		assert.Zero(t, conn.frameCount())
		assert.Equal(t, 0, env.registry.Count())
	})

	t.Run("same display name gets the same color", func(t *testing.T) {
		env := newTestEnv()
		connA, _ := env.connect(t)
		connB, _ := env.connect(t)

		env.join(t, connA, "room-1", "sam")
		env.join(t, connB, "room-1", "sam")

		var users []*models.Participant
		frames := connB.frames(t)
		require.NoError(t, json.Unmarshal(frames[0].Payload, &users))
		require.Len(t, users, 2)
		assert.Equal(t, users[0].Color, users[1].Color)
	})
}

func TestSession_Draw(t *testing.T) {
	t.Run("relayed to others but not the sender", func(t *testing.T) {
		env := newTestEnv()
		connA, _ := env.connect(t)
		connB, _ := env.connect(t)

		env.join(t, connA, "room-1", "alice")
		env.join(t, connB, "room-1", "bob")

		connA.queue(t, models.EventDraw, "room-1", map[string]interface{}{
			"type":   "path",
			"points": []int{1, 2, 3},
		})

		waitFor(t, func() bool { return connB.countType(t, models.EventDrawing) == 1 })
		assert.Zero(t, connA.countType(t, models.EventDrawing))

		var op models.DrawingOp
		for _, f := range connB.frames(t) {
			if f.Type == models.EventDrawing {
				require.NoError(t, json.Unmarshal(f.Payload, &op))
			}
		}
		assert.NotEmpty(t, op.ID)
		assert.NotZero(t, op.Timestamp)
		assert.JSONEq(t, `{"type":"path","points":[1,2,3]}`, string(op.Data))
	})

	t.Run("late joiner gets the stored op", func(t *testing.T) {
		env := newTestEnv()
		connA, _ := env.connect(t)

		env.join(t, connA, "room-1", "alice")
		connA.queue(t, models.EventDraw, "room-1", map[string]interface{}{"type": "path"})

		room, ok := env.registry.Get("room-1")
		require.True(t, ok)
		waitFor(t, func() bool {
			room.Lock()
			defer room.Unlock()
			return room.DrawingCount() == 1
		})

		connB, _ := env.connect(t)
		env.join(t, connB, "room-1", "bob")

		var ops []*models.DrawingOp
		frames := connB.frames(t)
		require.NoError(t, json.Unmarshal(frames[1].Payload, &ops))
		require.Len(t, ops, 1)
	})

	t.Run("ignored while unbound", func(t *testing.T) {
		env := newTestEnv()
		conn, _ := env.connect(t)

		conn.queue(t, models.EventDraw, "room-1", map[string]interface{}{"type": "path"})

		time.Sleep(20 * time.Millisecond)
		assert.Zero(t, conn.frameCount())
		assert.Equal(t, 0, env.registry.Count())
	})
}

func TestSession_ClearCanvas(t *testing.T) {
	t.Run("relayed to everyone including the invoker", func(t *testing.T) {
		env := newTestEnv()
		connA, _ := env.connect(t)
		connB, _ := env.connect(t)

		env.join(t, connA, "room-1", "alice")
		env.join(t, connB, "room-1", "bob")

		connA.queue(t, models.EventClearCanvas, "room-1", nil)

		waitFor(t, func() bool {
			return connA.countType(t, models.EventCanvasCleared) == 1 &&
				connB.countType(t, models.EventCanvasCleared) == 1
		})
	})

	t.Run("empties the drawing log but not the chat", func(t *testing.T) {
		env := newTestEnv()
		conn, _ := env.connect(t)

		env.join(t, conn, "room-1", "alice")
		conn.queue(t, models.EventDraw, "room-1", map[string]interface{}{"type": "path"})
		conn.queue(t, models.EventSendMessage, "room-1", models.ChatPayload{Message: "hi"})
		waitFor(t, func() bool { return conn.countType(t, models.EventReceiveMessage) == 1 })

		conn.queue(t, models.EventClearCanvas, "room-1", nil)
		waitFor(t, func() bool { return conn.countType(t, models.EventCanvasCleared) == 1 })

		room, ok := env.registry.Get("room-1")
		require.True(t, ok)
		room.Lock()
		defer room.Unlock()
		assert.Zero(t, room.DrawingCount())
		assert.Equal(t, 1, room.MessageCount())
	})
}

func TestSession_Chat(t *testing.T) {
	t.Run("echoed to everyone including the sender", func(t *testing.T) {
		env := newTestEnv()
		connA, _ := env.connect(t)
		connB, _ := env.connect(t)

		env.join(t, connA, "room-1", "alice")
		env.join(t, connB, "room-1", "bob")

		connA.queue(t, models.EventSendMessage, "room-1", models.ChatPayload{Message: "  hi  "})

		waitFor(t, func() bool {
			return connA.countType(t, models.EventReceiveMessage) == 1 &&
				connB.countType(t, models.EventReceiveMessage) == 1
		})

		var msg models.ChatMessage
		for _, f := range connA.frames(t) {
			if f.Type == models.EventReceiveMessage {
				require.NoError(t, json.Unmarshal(f.Payload, &msg))
			}
		}
		assert.Equal(t, "hi", msg.Message)
		assert.Equal(t, "alice", msg.Username)
		assert.Equal(t, models.ColorFor("alice"), msg.Color)
	})

	t.Run("whitespace-only text produces nothing", func(t *testing.T) {
		env := newTestEnv()
		connA, _ := env.connect(t)
		connB, _ := env.connect(t)

		env.join(t, connA, "room-1", "alice")
		env.join(t, connB, "room-1", "bob")

		connA.queue(t, models.EventSendMessage, "room-1", models.ChatPayload{Message: "   "})

		time.Sleep(20 * time.Millisecond)
		assert.Zero(t, connA.countType(t, models.EventReceiveMessage))
		assert.Zero(t, connB.countType(t, models.EventReceiveMessage))

		room, ok := env.registry.Get("room-1")
		require.True(t, ok)
		room.Lock()
		defer room.Unlock()
		assert.Zero(t, room.MessageCount())
	})
}

func TestSession_Heartbeat(t *testing.T) {
	t.Run("acked to the sender even while unbound", func(t *testing.T) {
		env := newTestEnv()
		conn, _ := env.connect(t)

		conn.queue(t, models.EventHeartbeat, "", models.HeartbeatPayload{Timestamp: 42})
		waitFor(t, func() bool { return conn.countType(t, models.EventHeartbeatAck) == 1 })

		var ack models.HeartbeatPayload
		for _, f := range conn.frames(t) {
			if f.Type == models.EventHeartbeatAck {
				require.NoError(t, json.Unmarshal(f.Payload, &ack))
			}
		}
		assert.Equal(t, int64(42), ack.Timestamp)
	})
}

func TestSession_Disconnect(t *testing.T) {
	t.Run("remaining members see user-left", func(t *testing.T) {
		env := newTestEnv()
		connA, clientA := env.connect(t)
		connB, _ := env.connect(t)

		env.join(t, connA, "room-1", "alice")
		env.join(t, connB, "room-1", "bob")

		clientA.Close()

		waitFor(t, func() bool { return connB.countType(t, models.EventUserLeft) == 1 })

		room, ok := env.registry.Get("room-1")
		require.True(t, ok)
		room.Lock()
		defer room.Unlock()
		assert.Equal(t, 1, room.ParticipantCount())
	})

	t.Run("last leave removes the room", func(t *testing.T) {
		env := newTestEnv()
		connA, clientA := env.connect(t)

		env.join(t, connA, "room-1", "alice")
		assert.Equal(t, 1, env.registry.Count())

		clientA.Close()
		waitFor(t, func() bool { return env.registry.Count() == 0 })
	})

	t.Run("unbound disconnect is a no-op", func(t *testing.T) {
		env := newTestEnv()
		_, client := env.connect(t)

		client.Close()

		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, 0, env.registry.Count())
	})
}

func TestSession_MalformedInput(t *testing.T) {
	t.Run("unknown event types are dropped", func(t *testing.T) {
		env := newTestEnv()
		conn, _ := env.connect(t)

		env.join(t, conn, "room-1", "alice")
		conn.queue(t, "shutdown", "room-1", nil)

		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, 3, conn.frameCount())
	})

	t.Run("invalid json is dropped", func(t *testing.T) {
		env := newTestEnv()
		conn, _ := env.connect(t)

		env.join(t, conn, "room-1", "alice")
		conn.inbound <- []byte("{not json")

		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, 3, conn.frameCount())
	})
}

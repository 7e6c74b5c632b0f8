package services_test

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/sumeghna/collaborative-whiteboard/internal/models"
	"github.com/sumeghna/collaborative-whiteboard/internal/services"
)

// mockConn implements services.WSConn in memory: inbound frames are queued
// by the test, outbound frames are recorded for inspection.
type mockConn struct {
	mu      sync.Mutex
	written [][]byte

	inbound   chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newMockConn() *mockConn {
	return &mockConn{
		inbound: make(chan []byte, 64),
		done:    make(chan struct{}),
	}
}

func (m *mockConn) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	select {
	case data := <-m.inbound:
		return websocket.MessageText, data, nil
	case <-m.done:
		return 0, nil, net.ErrClosed
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

func (m *mockConn) Write(ctx context.Context, typ websocket.MessageType, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return net.ErrClosed
	default:
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	m.written = append(m.written, cp)
	return nil
}

func (m *mockConn) Ping(ctx context.Context) error { return nil }

func (m *mockConn) Close(code websocket.StatusCode, reason string) error {
	m.closeOnce.Do(func() { close(m.done) })
	return nil
}

// frame is the decoded outbound envelope.
type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (m *mockConn) frames(t *testing.T) []frame {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]frame, 0, len(m.written))
	for _, data := range m.written {
		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			t.Fatalf("invalid frame %q: %v", data, err)
		}
		out = append(out, f)
	}
	return out
}

func (m *mockConn) frameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.written)
}

func (m *mockConn) countType(t *testing.T, eventType string) int {
	t.Helper()

	n := 0
	for _, f := range m.frames(t) {
		if f.Type == eventType {
			n++
		}
	}
	return n
}

// queue feeds one inbound envelope to the connection's read pump.
func (m *mockConn) queue(t *testing.T, eventType, roomID string, payload interface{}) {
	t.Helper()

	data, err := json.Marshal(&models.WSMessage{
		Type:    eventType,
		RoomID:  roomID,
		Payload: payload,
	})
	if err != nil {
		t.Fatalf("marshal inbound: %v", err)
	}

	select {
	case m.inbound <- data:
	case <-time.After(time.Second):
		t.Fatal("inbound queue full")
	}
}

// testEnv wires a full coordination core around an injected registry, the
// way main does, minus the transport.
type testEnv struct {
	metrics  *services.Metrics
	registry *services.Registry
	hub      *services.Hub
	presence *services.Presence
	typing   *services.TypingCoordinator
}

func newTestEnv() *testEnv {
	metrics := services.NewMetrics()
	registry := services.NewRegistry(metrics)
	hub := services.NewHub(metrics)

	return &testEnv{
		metrics:  metrics,
		registry: registry,
		hub:      hub,
		presence: services.NewPresence(registry, hub),
		typing:   services.NewTypingCoordinator(hub, 50*time.Millisecond, 120*time.Millisecond),
	}
}

// connect spins up a client with running pumps and a fresh session.
func (env *testEnv) connect(t *testing.T) (*mockConn, *services.Client) {
	t.Helper()

	conn := newMockConn()
	client := services.NewClient(conn, env.metrics)
	session := services.NewSession(client, env.presence, env.hub, env.typing, env.metrics)

	env.metrics.IncrementConnections()
	client.Start(session)

	t.Cleanup(client.Close)
	return conn, client
}

// join binds the connection to a room and waits for the history replay.
func (env *testEnv) join(t *testing.T, conn *mockConn, roomID, username string) {
	t.Helper()

	before := conn.frameCount()
	conn.queue(t, models.EventJoinRoom, roomID, models.JoinPayload{Username: username})
	waitFor(t, func() bool { return conn.frameCount() >= before+3 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

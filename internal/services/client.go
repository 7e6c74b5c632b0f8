package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/sumeghna/collaborative-whiteboard/internal/config"
	"github.com/sumeghna/collaborative-whiteboard/internal/models"
)

// WSConn is the transport contract the client needs from a connection.
// *websocket.Conn satisfies it; tests substitute an in-memory fake.
type WSConn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, data []byte) error
	Ping(ctx context.Context) error
	Close(code websocket.StatusCode, reason string) error
}

// SessionHandler consumes a connection's inbound events and its teardown.
type SessionHandler interface {
	HandleMessage(data []byte)
	HandleDisconnect()
}

// Client represents a single connection with its own send goroutine
type Client struct {
	// ID is the connection-scoped participant id.
	ID string

	conn    WSConn
	send    chan []byte
	metrics *Metrics

	// Rate limiting
	messageCount int
	rateLimitMu  sync.Mutex
	lastReset    time.Time

	// Lifecycle
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
	closeMu sync.Mutex
}

func NewClient(conn WSConn, metrics *Metrics) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		ID:        uuid.New().String(),
		conn:      conn,
		send:      make(chan []byte, config.ClientSendBufferSize),
		metrics:   metrics,
		lastReset: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins the client's read and write pumps. Inbound events are fed to
// the handler one at a time, and the handler's teardown runs exactly once
// when the read pump exits.
func (c *Client) Start(handler SessionHandler) {
	go c.writePump()
	go c.readPump(handler)
}

// writePump handles outgoing messages to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Channel closed, connection is closing
				_ = c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}

			writeCtx, cancel := context.WithTimeout(c.ctx, config.WriteTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()

			if err != nil {
				log.Printf("❌ Write error (client=%s): %v", c.ID, err)
				c.metrics.IncrementBroadcastErrors()
				return
			}
			c.metrics.IncrementMessagesSent()

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(c.ctx, config.WriteTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()

			if err != nil {
				log.Printf("❌ Ping error (client=%s): %v", c.ID, err)
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// readPump handles incoming messages from the connection
func (c *Client) readPump(handler SessionHandler) {
	defer func() {
		handler.HandleDisconnect()
		c.Close()
	}()

	for {
		readCtx, cancel := context.WithTimeout(c.ctx, config.PongTimeout)
		_, message, err := c.conn.Read(readCtx)
		cancel()

		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				c.metrics.IncrementConnectionErrors()
			}
			return
		}

		if !c.checkRateLimit() {
			log.Printf("⚠️  Rate limit exceeded (client=%s)", c.ID)
			c.metrics.IncrementRateLimitViolations()
			c.sendError("Rate limit exceeded. Please slow down.")
			continue
		}

		c.metrics.IncrementMessagesReceived()
		handler.HandleMessage(message)
	}
}

// checkRateLimit verifies the client hasn't exceeded message rate limits
func (c *Client) checkRateLimit() bool {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	now := time.Now()
	if now.Sub(c.lastReset) > config.RateLimitWindow {
		c.messageCount = 0
		c.lastReset = now
	}

	c.messageCount++
	return c.messageCount <= config.MaxMessagesPerSecond
}

func (c *Client) sendError(message string) {
	data, err := json.Marshal(&models.WSMessage{
		Type:    models.EventError,
		Payload: models.ErrorPayload{Message: message},
	})
	if err != nil {
		return
	}
	c.Send(data)
}

// Send queues a message for delivery. Returns false when the client is
// closed or too slow to keep up; in the latter case the client is dropped so
// the rest of the room is never stalled.
func (c *Client) Send(message []byte) bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- message:
		return true
	default:
		log.Printf("⚠️  Send buffer full, closing slow client (client=%s)", c.ID)
		c.metrics.IncrementBroadcastErrors()
		go c.Close()
		return false
	}
}

// Close cleanly shuts down the client connection
func (c *Client) Close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.cancel()
	close(c.send)
	_ = c.conn.Close(websocket.StatusNormalClosure, "")
}

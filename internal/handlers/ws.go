package handlers

import (
	"github.com/coder/websocket"
	"github.com/pocketbase/pocketbase/core"

	"github.com/sumeghna/collaborative-whiteboard/internal/security"
	"github.com/sumeghna/collaborative-whiteboard/internal/services"
)

type WSHandler struct {
	hub      *services.Hub
	presence *services.Presence
	typing   *services.TypingCoordinator
	metrics  *services.Metrics
	origins  *security.OriginValidator
}

func NewWSHandler(hub *services.Hub, presence *services.Presence, typing *services.TypingCoordinator, metrics *services.Metrics, origins *security.OriginValidator) *WSHandler {
	return &WSHandler{
		hub:      hub,
		presence: presence,
		typing:   typing,
		metrics:  metrics,
		origins:  origins,
	}
}

// HandleWebSocket upgrades the request and hands the connection to a fresh
// session. The connection arrives unbound; a join-room event binds it to a
// room later.
func (h *WSHandler) HandleWebSocket(re *core.RequestEvent) error {
	conn, err := websocket.Accept(re.Response, re.Request, h.origins.AcceptOptions())
	if err != nil {
		return err
	}

	client := services.NewClient(conn, h.metrics)
	session := services.NewSession(client, h.presence, h.hub, h.typing, h.metrics)

	h.metrics.IncrementConnections()
	client.Start(session)

	return nil
}

package handlers

import (
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"github.com/sumeghna/collaborative-whiteboard/internal/services"
)

// StatusHandlers serves the read-only discovery endpoints over the
// session registry.
type StatusHandlers struct {
	registry *services.Registry
	metrics  *services.Metrics
}

func NewStatusHandlers(registry *services.Registry, metrics *services.Metrics) *StatusHandlers {
	return &StatusHandlers{
		registry: registry,
		metrics:  metrics,
	}
}

// Health returns server health status
func (h *StatusHandlers) Health(e *core.RequestEvent) error {
	snapshot := h.metrics.Snapshot()

	status := http.StatusOK
	if snapshot.HealthStatus == "critical" {
		status = http.StatusServiceUnavailable
	}

	return e.JSON(status, map[string]interface{}{
		"status":         snapshot.HealthStatus,
		"timestamp":      time.Now().Format(time.RFC3339),
		"rooms":          h.registry.Count(),
		"connections":    snapshot.ActiveConnections,
		"uptime_seconds": snapshot.UptimeSeconds,
	})
}

// Rooms lists every live room with its member and history counts
func (h *StatusHandlers) Rooms(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, h.registry.Snapshot())
}

// Room returns the detail for a single room
func (h *StatusHandlers) Room(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")

	info, ok := h.registry.Describe(id)
	if !ok {
		return e.JSON(http.StatusNotFound, map[string]string{"error": "Room not found"})
	}
	return e.JSON(http.StatusOK, info)
}

// HandleMetrics returns the full metrics snapshot
func HandleMetrics(metrics *services.Metrics) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return e.JSON(http.StatusOK, metrics.Snapshot())
	}
}

package handler

import (
	"context"
	"net/http"
	"time"

	natsclient "github.com/Neeraj110/chatApp/internal/nats"
	"github.com/Neeraj110/chatApp/internal/presence"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	mongoPing  func(ctx context.Context) error
	natsClient *natsclient.Client
	presence   *presence.Tracker
	started    time.Time
}

// NewHealthHandler creates a new health handler. mongoPing probes the
// database connection.
func NewHealthHandler(mongoPing func(ctx context.Context) error, natsClient *natsclient.Client, tracker *presence.Tracker) *HealthHandler {
	return &HealthHandler{
		mongoPing:  mongoPing,
		natsClient: natsClient,
		presence:   tracker,
		started:    time.Now(),
	}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"uptime": time.Since(h.started).String(),
	})
}

// Ready handles GET /ready, probing every backing dependency.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.mongoPing != nil {
		if err := h.mongoPing(ctx); err != nil {
			notReady(w, "MongoDB not reachable")
			return
		}
	}
	if h.natsClient == nil || !h.natsClient.IsConnected() {
		notReady(w, "NATS not connected")
		return
	}
	if h.presence != nil {
		if err := h.presence.Ping(ctx); err != nil {
			notReady(w, "Redis not reachable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func notReady(w http.ResponseWriter, reason string) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status": "not ready",
		"reason": reason,
	})
}

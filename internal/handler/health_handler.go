package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	ServiceName    = "user-service"
	ServiceVersion = "1.0.0"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness of the service and its stores.
type HealthHandler struct {
	db      pinger
	session pinger
}

func NewHealthHandler(db pinger, session pinger) *HealthHandler {
	return &HealthHandler{db: db, session: session}
}

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Database  string `json:"database"`
	Sessions  string `json:"sessions"`
	Timestamp string `json:"timestamp"`
}

// Health handles GET /health: 200 when both stores answer a ping, 503
// otherwise. Store errors are logged, never echoed to the client.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:    "healthy",
		Service:   ServiceName,
		Version:   ServiceVersion,
		Database:  "connected",
		Sessions:  "connected",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		slog.Error("health check: database ping failed", "error", err)
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}

	if err := h.session.Ping(ctx); err != nil {
		slog.Error("health check: session store ping failed", "error", err)
		resp.Status = "unhealthy"
		resp.Sessions = "disconnected"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// Ping handles GET /ping with the service identity line.
func (h *HealthHandler) Ping(w http.ResponseWriter, _ *http.Request) {
	_, _ = fmt.Fprintf(w, "%s %s", ServiceName, ServiceVersion)
}

// Hello handles GET /hello/{name}.
func (h *HealthHandler) Hello(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "Hello %s!", chi.URLParam(r, "name"))
}

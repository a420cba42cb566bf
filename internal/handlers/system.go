package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/alfagnish/users-gateway/internal/events"
	"github.com/alfagnish/users-gateway/internal/users"
	"github.com/go-chi/chi/v5"
)

const pingTimeout = 2 * time.Second

// SystemHandler provides the health check endpoint.
type SystemHandler struct {
	store   users.Store
	backend string
	hub     *events.Hub
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(store users.Store, backend string, hub *events.Hub) *SystemHandler {
	return &SystemHandler{store: store, backend: backend, hub: hub}
}

// Routes registers all system routes on the given chi router.
func (h *SystemHandler) Routes(r chi.Router) {
	r.Get("/health", h.Health)
}

type healthResponse struct {
	Status      string `json:"status"`
	Store       string `json:"store"`
	Subscribers int    `json:"subscribers"`
	Error       string `json:"error,omitempty"`
}

// Health pings the user store.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Store: h.backend}
	if h.hub != nil {
		resp.Subscribers = h.hub.Count()
	}

	if err := h.store.Ping(ctx); err != nil {
		resp.Status = "error"
		resp.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// storeProbe is the part of the registration service the readiness check needs.
type storeProbe interface {
	NumberOfUsers(ctx context.Context) (int, error)
	DatabaseName() string
}

// HealthHandler handles health-check endpoints: "ping" for liveness and
// "store" for a round trip to the user store.
type HealthHandler struct {
	store storeProbe
}

func NewHealthHandler(store storeProbe) *HealthHandler { return &HealthHandler{store: store} }

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "ping":
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pong"})
	case "store":
		if _, err := h.store.NumberOfUsers(r.Context()); err != nil {
			slog.Warn("user store unreachable", "store", h.store.DatabaseName(), "err", err)
			writeError(w, http.StatusServiceUnavailable, h.store.DatabaseName()+" unreachable")
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: h.store.DatabaseName() + " ok"})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

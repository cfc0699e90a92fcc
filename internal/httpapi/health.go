package httpapi

import (
	"context"
	"net/http"
	"time"
)

// HealthResponse is the body of the health endpoints.
type HealthResponse struct {
	Status string `json:"status"`
}

// healthLive reports that the process is serving HTTP.
func healthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "UP"})
}

// healthReady reports whether the desk answers a snapshot promptly.
func (h *handler) healthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if _, err := h.desk.Snapshot(ctx); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "DOWN"})
		return
	}
	respondJSON(w, http.StatusOK, HealthResponse{Status: "UP"})
}

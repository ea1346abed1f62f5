package handlers

import (
	"context"
	"net/http"
)

//go:generate mockgen -source=health.go -destination=mock_health.go -package=handlers

// Pinger reports whether the store answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse represents the service health
// swagger:model HealthResponse
type HealthResponse struct {
	// default: success
	Status string `json:"status"`
}

// NewHealthHandler returns an HTTP handler that pings the store.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} handlers.HealthResponse "Store reachable"
// @Failure 503 {object} handlers.ErrorResponse "Store unreachable"
// @Router /health [get]
func NewHealthHandler(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Status: StatusError, Message: "Service unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: StatusSuccess})
	}
}

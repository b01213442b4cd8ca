package api

import (
	"mission-circuit-service/internal/api/handlers"
	"mission-circuit-service/internal/platform/obs"
	"net/http"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
// db may be nil, in which case /health only reports liveness.
func NewRouter(svc handlers.CircuitService, db handlers.Pinger) http.Handler {
	mux := http.NewServeMux()

	circuitHandler := &handlers.CircuitHandler{Service: svc}
	healthHandler := &handlers.HealthHandler{DB: db}

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", obs.MetricsHandler())
	mux.HandleFunc("POST /api/missions/{id}/generate-circuits", circuitHandler.Generate)
	mux.HandleFunc("GET /api/missions/{id}/circuits", circuitHandler.List)
	mux.HandleFunc("GET /api/missions/{id}/tasks", circuitHandler.ListTasks)

	return requestIDMiddleware(loggingMiddleware(mux))
}

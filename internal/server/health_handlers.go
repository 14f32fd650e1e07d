package server

import (
	"net/http"
	"os"
	"time"
)

// HealthStatus represents operational status for the /health endpoint.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Catalog   string                 `json:"catalog"`
	Clips     string                 `json:"clips"`
	Stations  int                    `json:"stationCount"`
	Dates     int                    `json:"dateCount"`
	Sessions  int                    `json:"activeSessions"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// handleHealthCheck returns basic liveness + dependency checks.
func (ms *MapServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Catalog:   "ok",
		Clips:     "ok",
		Sessions:  ms.sessions.Count(),
		Details:   make(map[string]interface{}),
	}

	// An empty catalog means the initial load failed; the shell serves but
	// carries no content.
	if ms.catalog.Empty() {
		health.Status = "degraded"
		health.Catalog = "empty"
		health.Details["catalog_error"] = "no content loaded"
	} else {
		health.Stations = len(ms.catalog.Roster())
		health.Dates = len(ms.catalog.DateOrder())
	}

	// Check clip directory accessibility
	if _, err := os.Stat(ms.config.Clips.Dir); err != nil {
		health.Clips = "error"
		health.Details["clips_error"] = err.Error()
	}

	if health.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	ms.respondJSON(w, health)
}

package server

import (
	"encoding/json"
	"net/http"

	"aircheck/internal/selection"
)

// selectionResponse bundles the machine's view with the recorded map state
type selectionResponse struct {
	selection.View
	Map selection.MapState `json:"map"`
}

// handleGetSelection returns the session's current selection snapshot
func (ms *MapServer) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	cs, ok := ms.requireSession(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	ms.respondJSON(w, selectionResponse{
		View: cs.Machine.View(),
		Map:  cs.Recorder.MapState(),
	})
}

// handleSetDate switches the session's selected date. An unknown date is a
// no-op server-side; the response carries the (unchanged) view either way.
func (ms *MapServer) handleSetDate(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cs, ok := ms.requireSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ms.respondWithError(w, r, http.StatusBadRequest, "Invalid JSON", err)
		return
	}

	cs.Machine.SetDate(sanitizeInput(req.Date))

	w.Header().Set("Content-Type", "application/json")
	ms.respondJSON(w, selectionResponse{
		View: cs.Machine.View(),
		Map:  cs.Recorder.MapState(),
	})
}

// handleSelectStation switches the session's selected station (marker or
// list click). Invalid ids leave the selection untouched.
func (ms *MapServer) handleSelectStation(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cs, ok := ms.requireSession(w, r)
	if !ok {
		return
	}

	var req struct {
		StationID string `json:"stationId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ms.respondWithError(w, r, http.StatusBadRequest, "Invalid JSON", err)
		return
	}

	cs.Machine.SelectStation(sanitizeInput(req.StationID))

	w.Header().Set("Content-Type", "application/json")
	ms.respondJSON(w, selectionResponse{
		View: cs.Machine.View(),
		Map:  cs.Recorder.MapState(),
	})
}

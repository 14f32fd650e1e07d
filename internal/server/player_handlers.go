package server

import (
	"encoding/json"
	"net/http"

	"aircheck/internal/player"
	"aircheck/internal/session"
)

// playerResponse bundles the controller state with the pending element
// command set the client applies to its audio element.
type playerResponse struct {
	State   player.State   `json:"state"`
	Command player.Command `json:"command"`
}

func (ms *MapServer) writePlayerResponse(w http.ResponseWriter, cs *session.ClientSession) {
	w.Header().Set("Content-Type", "application/json")
	ms.respondJSON(w, playerResponse{
		State:   cs.Controller.State(),
		Command: cs.Element.Command(),
	})
}

// handleGetPlayerState returns the session's playback state and element command
func (ms *MapServer) handleGetPlayerState(w http.ResponseWriter, r *http.Request) {
	cs, ok := ms.requireSession(w, r)
	if !ok {
		return
	}
	ms.writePlayerResponse(w, cs)
}

// handlePlayerToggle flips between playing and paused
func (ms *MapServer) handlePlayerToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cs, ok := ms.requireSession(w, r)
	if !ok {
		return
	}

	cs.Controller.TogglePlayPause()
	ms.writePlayerResponse(w, cs)
}

// handlePlayerSeek jumps to a fractional position of the clip
func (ms *MapServer) handlePlayerSeek(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cs, ok := ms.requireSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Fraction float64 `json:"fraction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ms.respondWithError(w, r, http.StatusBadRequest, "Invalid JSON", err)
		return
	}

	cs.Controller.Seek(req.Fraction)
	ms.writePlayerResponse(w, cs)
}

// handlePlayerVolume adjusts the volume level (implicitly unmuting)
func (ms *MapServer) handlePlayerVolume(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cs, ok := ms.requireSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Level float64 `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ms.respondWithError(w, r, http.StatusBadRequest, "Invalid JSON", err)
		return
	}

	cs.Controller.SetVolume(req.Level)
	ms.writePlayerResponse(w, cs)
}

// handlePlayerMute toggles mute, restoring the pre-mute volume on unmute
func (ms *MapServer) handlePlayerMute(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cs, ok := ms.requireSession(w, r)
	if !ok {
		return
	}

	cs.Controller.ToggleMute()
	ms.writePlayerResponse(w, cs)
}

// handlePlayerEvents ingests media events reported by the client's audio
// element: position updates, metadata, natural end of track, and errors.
func (ms *MapServer) handlePlayerEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cs, ok := ms.requireSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Type        string  `json:"type"`
		CurrentTime float64 `json:"currentTime,omitempty"`
		Duration    float64 `json:"duration,omitempty"`
		Message     string  `json:"message,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ms.respondWithError(w, r, http.StatusBadRequest, "Invalid JSON", err)
		return
	}

	switch req.Type {
	case "timeupdate":
		cs.Controller.HandleTimeUpdate(req.CurrentTime)
	case "loadedmetadata":
		cs.Controller.HandleMetadata(req.Duration)
	case "ended":
		cs.Controller.HandleEnded()
	case "error":
		cs.Controller.HandleError(req.Message)
	default:
		ms.respondWithError(w, r, http.StatusBadRequest, "Unknown event type", nil)
		return
	}

	ms.writePlayerResponse(w, cs)
}

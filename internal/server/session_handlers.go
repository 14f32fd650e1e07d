package server

import (
	"net/http"

	"aircheck/internal/session"
)

// handleCreateSession creates a new client session. The session starts
// behind the advisory gate: selection and player endpoints refuse it until
// the notice is acknowledged.
func (ms *MapServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	ipAddress := r.RemoteAddr
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ipAddress = forwarded
	}

	cs := ms.sessions.CreateSession(r.Header.Get("User-Agent"), ipAddress)

	ms.logger.WithField("session", cs.Session.ID).Info("New session created")

	ms.respondJSON(w, map[string]interface{}{
		"sessionId":    cs.Session.ID,
		"acknowledged": false,
	})
}

// handleAcknowledge dismisses the advisory notice for a session and starts
// its selection machine on the default date. The flag lives only for the
// session's lifetime.
func (ms *MapServer) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		ms.respondWithError(w, r, http.StatusBadRequest, "Missing session id", nil)
		return
	}

	if !ms.sessions.Acknowledge(sessionID) {
		ms.respondWithError(w, r, http.StatusNotFound, "Session not found", nil)
		return
	}

	ms.logger.WithField("session", sessionID).Info("Advisory notice acknowledged")

	w.Header().Set("Content-Type", "application/json")
	ms.respondJSON(w, map[string]interface{}{
		"sessionId":    sessionID,
		"acknowledged": true,
	})
}

// sessionIDFromRequest reads the session id from the X-Session-ID header,
// falling back to a query parameter for clients that cannot set headers.
func sessionIDFromRequest(r *http.Request) string {
	if id := r.Header.Get("X-Session-ID"); id != "" {
		return id
	}
	return r.URL.Query().Get("session")
}

// requireSession resolves the request's session and enforces the
// acknowledgement gate. Responds with the appropriate error on failure.
func (ms *MapServer) requireSession(w http.ResponseWriter, r *http.Request) (*session.ClientSession, bool) {
	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		ms.respondWithError(w, r, http.StatusBadRequest, "Missing session id", nil)
		return nil, false
	}

	cs, ok := ms.sessions.GetSession(sessionID)
	if !ok {
		ms.respondWithError(w, r, http.StatusNotFound, "Session not found", nil)
		return nil, false
	}

	if !cs.Session.Acknowledged {
		ms.respondWithError(w, r, http.StatusForbidden, "Advisory notice not acknowledged", nil)
		return nil, false
	}

	return cs, true
}

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// respondJSON encodes a response body, logging encode failures
func (ms *MapServer) respondJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ms.logger.WithError(err).Error("Failed to encode JSON response")
	}
}

// respondWithError sends a structured error response
func (ms *MapServer) respondWithError(w http.ResponseWriter, r *http.Request, statusCode int, message string, err error) {
	logEntry := ms.logger.WithFields(logrus.Fields{
		"method":      r.Method,
		"path":        r.URL.Path,
		"status_code": statusCode,
		"message":     message,
	})

	if err != nil {
		logEntry = logEntry.WithError(err)
	}

	if statusCode >= 500 {
		logEntry.Error("Server error")
	} else {
		logEntry.Warn("Client error")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]interface{}{
		"error":   message,
		"code":    statusCode,
		"success": false,
	}

	ms.respondJSON(w, response)
}

// validateClipPath resolves a requested clip name inside the clips directory
// and rejects anything that escapes it.
func (ms *MapServer) validateClipPath(name string) (string, error) {
	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("clip name contains null byte")
	}

	cleanPath := filepath.Clean(filepath.Join(ms.config.Clips.Dir, name))
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return "", fmt.Errorf("invalid clip path: %w", err)
	}

	absClipsDir, err := filepath.Abs(ms.config.Clips.Dir)
	if err != nil {
		return "", fmt.Errorf("invalid clips directory: %w", err)
	}

	relPath, err := filepath.Rel(absClipsDir, absPath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return "", fmt.Errorf("clip path outside allowed directory")
	}

	return absPath, nil
}

// sanitizeInput strips null bytes and surrounding whitespace from user input
func sanitizeInput(input string) string {
	sanitized := strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(sanitized)
}

package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// contentTypeForClip maps a clip extension to its MIME type
func contentTypeForClip(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return "audio/mpeg"
	case ".flac":
		return "audio/flac"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}

// handleClip streams a locally hosted audio clip with Range support so the
// draggable progress indicator can seek. The probed duration rides along in
// a header so the client knows total time before its metadata event.
func (ms *MapServer) handleClip(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/clips/")
	if name == "" {
		ms.respondWithError(w, r, http.StatusBadRequest, "Missing clip name", nil)
		return
	}

	clipPath, err := ms.validateClipPath(name)
	if err != nil {
		ms.respondWithError(w, r, http.StatusBadRequest, "Invalid clip path", err)
		return
	}

	if !ms.prober.IsClipFile(clipPath) {
		ms.respondWithError(w, r, http.StatusBadRequest, "Unsupported clip format", nil)
		return
	}

	stat, err := os.Stat(clipPath)
	if err != nil {
		ms.respondWithError(w, r, http.StatusNotFound, "Clip not found", err)
		return
	}

	file, err := os.Open(clipPath)
	if err != nil {
		ms.respondWithError(w, r, http.StatusInternalServerError, "Error opening clip", err)
		return
	}
	defer file.Close()

	if info, err := ms.prober.Probe(clipPath); err == nil {
		w.Header().Set("X-Clip-Duration", strconv.Itoa(info.Duration))
	}

	w.Header().Set("Content-Type", contentTypeForClip(clipPath))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Cache-Control", "public, max-age=3600")

	// Handle range requests for seeking support
	rangeHeader := r.Header.Get("Range")
	if rangeHeader != "" {
		ms.handleRangeRequest(w, file, stat.Size(), rangeHeader)
		return
	}

	w.Header().Set("Content-Length", strconv.FormatInt(stat.Size(), 10))
	if _, err := io.Copy(w, file); err != nil {
		ms.logger.WithError(err).WithField("clip", clipPath).Warn("Error streaming clip")
	}
}

// handleRangeRequest implements simple single-range byte serving for seeking.
func (ms *MapServer) handleRangeRequest(w http.ResponseWriter, file *os.File, fileSize int64, rangeHeader string) {
	// Parse range header (e.g., "bytes=0-1023")
	ranges := strings.TrimPrefix(rangeHeader, "bytes=")
	rangeParts := strings.Split(ranges, "-")

	start, err := strconv.ParseInt(rangeParts[0], 10, 64)
	if err != nil {
		start = 0
	}

	var end int64
	if len(rangeParts) > 1 && rangeParts[1] != "" {
		end, err = strconv.ParseInt(rangeParts[1], 10, 64)
		if err != nil {
			end = fileSize - 1
		}
	} else {
		end = fileSize - 1
	}

	// Validate range
	if start < 0 || end >= fileSize || start > end {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", fileSize))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return
	}

	// Set partial content headers
	contentLength := end - start + 1
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, fileSize))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", contentLength))
	w.WriteHeader(http.StatusPartialContent)

	// Seek to start position and copy the requested range
	file.Seek(start, io.SeekStart)
	io.CopyN(w, file, contentLength)
}

package models

import "math"

// Station represents one radio station from the master tab
type Station struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// Placeable reports whether the station has finite coordinates and can be
// rendered as a map marker. Unplaceable stations still appear in text listings.
func (s Station) Placeable() bool {
	return !math.IsNaN(s.Lat) && !math.IsNaN(s.Lng) &&
		!math.IsInf(s.Lat, 0) && !math.IsInf(s.Lng, 0)
}

// DateStationEntry holds one station's content for one date tab
type DateStationEntry struct {
	Description string `json:"description"`
	AudioRef    string `json:"audioRef"`
}

// DateContent holds everything tied to a single date tab
type DateContent struct {
	Tab      string                      `json:"tab"`
	Title    string                      `json:"title"`
	Context  string                      `json:"context"`
	Stations map[string]DateStationEntry `json:"stations"`
}

// HasStation reports whether the date has an entry for the given station id.
func (dc DateContent) HasStation(id string) bool {
	_, ok := dc.Stations[id]
	return ok
}

// ClipInfo describes a locally hosted audio clip, probed server-side so the
// client knows total duration before its own metadata event fires.
type ClipInfo struct {
	Path     string `json:"-"` // don't expose file path to client
	Title    string `json:"title"`
	Artist   string `json:"artist,omitempty"`
	Duration int    `json:"duration"` // in seconds
	FileSize int64  `json:"fileSize"`
}

// Package selection reconciles the selected date and station with the map,
// the station list, and the audio player.
package selection

// MapView is the map-rendering collaborator. Markers are placed once at
// load time; afterwards the machine only updates popup content in place,
// opens popups, and recenters the viewport.
type MapView interface {
	Recenter(lat, lng float64, zoom int)
	SetPopupContent(stationID, name, description string)
	OpenPopup(stationID string)
}

// StationList is the rendered list of stations for the current date
type StationList interface {
	Render(rows []Row)
	SetActive(stationID string)
}

// AudioPlayer receives the selected station's audio reference. The player
// package's Controller satisfies this.
type AudioPlayer interface {
	LoadSource(url string)
}

// Row is one rendered station list entry
type Row struct {
	StationID   string `json:"stationId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

package selection

import "sync"

// MapState is the recorded viewport and popup state the client syncs to
type MapState struct {
	CenterLat   float64          `json:"centerLat"`
	CenterLng   float64          `json:"centerLng"`
	Zoom        int              `json:"zoom"`
	OpenPopupID string           `json:"openPopupId,omitempty"`
	Popups      map[string]Popup `json:"popups"`
}

// Popup is one marker's popup content
type Popup struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Recorder implements MapView and StationList by recording the commands the
// machine issues, so the HTTP layer can hand the resulting state to the
// browser. The real map library and DOM live on the client; this is their
// server-side stand-in.
type Recorder struct {
	mutex    sync.Mutex
	mapState MapState
	rows     []Row
	activeID string
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{
		mapState: MapState{Popups: make(map[string]Popup)},
	}
}

// Recenter records a viewport move
func (r *Recorder) Recenter(lat, lng float64, zoom int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.mapState.CenterLat = lat
	r.mapState.CenterLng = lng
	r.mapState.Zoom = zoom
}

// SetPopupContent updates one marker's popup in place
func (r *Recorder) SetPopupContent(stationID, name, description string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.mapState.Popups[stationID] = Popup{Name: name, Description: description}
}

// OpenPopup records which marker's popup is open
func (r *Recorder) OpenPopup(stationID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.mapState.OpenPopupID = stationID
}

// Render replaces the station list rows
func (r *Recorder) Render(rows []Row) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.rows = make([]Row, len(rows))
	copy(r.rows, rows)
	r.activeID = ""
}

// SetActive records the single highlighted row
func (r *Recorder) SetActive(stationID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.activeID = stationID
}

// MapState returns the recorded map state (thread-safe)
func (r *Recorder) MapState() MapState {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	state := r.mapState
	state.Popups = make(map[string]Popup, len(r.mapState.Popups))
	for id, popup := range r.mapState.Popups {
		state.Popups[id] = popup
	}
	return state
}

// ActiveID returns the currently highlighted station id
func (r *Recorder) ActiveID() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.activeID
}

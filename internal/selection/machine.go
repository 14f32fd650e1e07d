package selection

import (
	"sync"

	"aircheck/internal/catalog"
	"aircheck/pkg/models"

	"github.com/sirupsen/logrus"
)

// View is a queryable snapshot of everything the selection currently drives
type View struct {
	SelectedDate      string `json:"selectedDate"`
	SelectedStationID string `json:"selectedStationId,omitempty"`
	Title             string `json:"title"`
	Context           string `json:"context"`
	StationName       string `json:"stationName,omitempty"`
	StationDesc       string `json:"stationDescription,omitempty"`
	AudioRef          string `json:"audioRef,omitempty"`
	Rows              []Row  `json:"stations"`
}

// Machine holds the (date, station) selection for one session and pushes
// every change out to the injected collaborators. Invalid transitions are
// logged no-ops; nothing here ever aborts the UI.
type Machine struct {
	catalog     *catalog.Catalog
	mapView     MapView
	list        StationList
	audio       AudioPlayer
	stationZoom int
	logger      *logrus.Logger

	mutex             sync.Mutex
	initialized       bool
	selectedDate      string
	selectedStationID string
	view              View
}

// NewMachine creates an uninitialized selection machine
func NewMachine(cat *catalog.Catalog, mapView MapView, list StationList, audio AudioPlayer, stationZoom int, logger *logrus.Logger) *Machine {
	return &Machine{
		catalog:     cat,
		mapView:     mapView,
		list:        list,
		audio:       audio,
		stationZoom: stationZoom,
		logger:      logger,
	}
}

// Start moves the machine from Uninitialized to Ready on the default date
func (m *Machine) Start(defaultDate string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.initialized {
		return
	}
	m.initialized = true
	m.setDate(defaultDate)
}

// View returns the current snapshot (thread-safe)
func (m *Machine) View() View {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	view := m.view
	view.Rows = make([]Row, len(m.view.Rows))
	copy(view.Rows, m.view.Rows)
	return view
}

// SetDate switches the selected date. Unknown identifiers are ignored with
// a diagnostic and leave the selection untouched.
func (m *Machine) SetDate(date string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.setDate(date)
}

// SelectStation switches the selected station. The id must exist in both
// the roster and the current date's entries; anything else is a logged no-op.
func (m *Machine) SelectStation(stationID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.selectStation(stationID)
}

// setDate must be called with the lock held
func (m *Machine) setDate(date string) {
	content, ok := m.catalog.Date(date)
	if !ok {
		m.logger.WithField("date", date).Warn("Ignoring unknown date selection")
		return
	}

	m.selectedDate = date

	// Keep the prior station if it still has an entry; otherwise fall back
	// to the first roster-order station with one, or to no selection.
	stationID := m.selectedStationID
	if stationID != "" && !content.HasStation(stationID) {
		stationID = ""
	}
	if stationID == "" {
		for _, station := range m.catalog.Roster() {
			if content.HasStation(station.ID) {
				stationID = station.ID
				break
			}
		}
	}
	m.selectedStationID = ""

	m.renderDate(content)

	if stationID != "" {
		m.selectStation(stationID)
	}
}

// renderDate rebuilds the date-dependent UI: title/context text, the station
// list (roster order, entries only), and marker popup content in place.
// Must be called with the lock held.
func (m *Machine) renderDate(content models.DateContent) {
	m.view = View{
		SelectedDate: m.selectedDate,
		Title:        content.Title,
		Context:      content.Context,
	}

	rows := make([]Row, 0, len(content.Stations))
	for _, station := range m.catalog.Roster() {
		entry, ok := content.Stations[station.ID]
		if !ok {
			continue
		}
		rows = append(rows, Row{
			StationID:   station.ID,
			Name:        station.Name,
			Description: entry.Description,
		})
		m.mapView.SetPopupContent(station.ID, station.Name, entry.Description)
	}

	m.view.Rows = rows
	m.list.Render(rows)
}

// selectStation must be called with the lock held
func (m *Machine) selectStation(stationID string) {
	station, ok := m.catalog.Station(stationID)
	if !ok {
		m.logger.WithField("station", stationID).Warn("Ignoring selection of unknown station")
		return
	}

	content, ok := m.catalog.Date(m.selectedDate)
	if !ok {
		m.logger.WithField("date", m.selectedDate).Warn("Selected date has no content")
		return
	}

	entry, ok := content.Stations[stationID]
	if !ok {
		m.logger.WithFields(logrus.Fields{
			"station": stationID,
			"date":    m.selectedDate,
		}).Warn("Ignoring selection of station with no entry for the current date")
		return
	}

	m.selectedStationID = stationID

	// Exactly one list row carries the active highlight.
	for i := range m.view.Rows {
		m.view.Rows[i].Active = m.view.Rows[i].StationID == stationID
	}
	m.list.SetActive(stationID)

	m.view.SelectedStationID = stationID
	m.view.StationName = station.Name
	m.view.StationDesc = entry.Description
	m.view.AudioRef = entry.AudioRef

	m.audio.LoadSource(entry.AudioRef)

	if station.Placeable() {
		m.mapView.Recenter(station.Lat, station.Lng, m.stationZoom)
		m.mapView.OpenPopup(stationID)
	}
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"aircheck/internal/config"
	"aircheck/internal/sheets"

	"github.com/sirupsen/logrus"
)

func testConfig(dataDir, clipsDir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Sheets.DataDir = dataDir
	cfg.Sheets.WatchDataDir = false
	cfg.Sheets.DateTabs = []string{"Feb22", "Feb23"}
	cfg.Sheets.DefaultDate = "Feb22"
	cfg.Clips.Dir = clipsDir
	cfg.Ngrok.Enabled = false
	cfg.Logging.RequestLogging = false
	return cfg
}

func writeTab(t *testing.T, dir, tab, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, tab+".csv"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write tab %s: %v", tab, err)
	}
}

// newTestServer builds a server over a local data directory with three
// stations (one with unparseable coordinates) and two date tabs.
func newTestServer(t *testing.T) (*MapServer, http.Handler) {
	t.Helper()

	dataDir := t.TempDir()
	clipsDir := t.TempDir()

	writeTab(t, dataDir, "Master", "id,name,lat,lng,description,icon\n"+
		"kexp,KEXP 90.3,47.6654,-122.3770,Community radio from Seattle,tower\n"+
		"wfmu,WFMU 91.1,40.7439,-74.0276,Freeform radio from Jersey City,tower\n"+
		"pirate,Offshore Pirate,unknown,unknown,Anchored somewhere offshore,ship\n")
	writeTab(t, dataDir, "Feb22", "id,description,audio,context\n"+
		"kexp,Morning drive aircheck,/clips/kexp-feb22.mp3,Week one of the broadcast\n"+
		"wfmu,Overnight freeform block,/clips/wfmu-feb22.mp3\n")
	writeTab(t, dataDir, "Feb23", "id,description,audio,context\n"+
		"wfmu,Marathon pledge drive,/clips/wfmu-feb23.mp3,Week one continues\n"+
		"pirate,,\n")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ms, err := NewMapServer(testConfig(dataDir, clipsDir), logger)
	if err != nil {
		t.Fatalf("Failed to create map server: %v", err)
	}
	if err := ms.LoadCatalog(context.Background()); err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	return ms, ms.setupRoutes()
}

func doJSON(t *testing.T, handler http.Handler, method, path, sessionID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
}

// newAcknowledgedSession creates a session and clears the advisory gate.
func newAcknowledgedSession(t *testing.T, handler http.Handler) string {
	t.Helper()

	rr := doJSON(t, handler, "POST", "/api/session", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Session creation returned %d", rr.Code)
	}
	var created struct {
		SessionID string `json:"sessionId"`
	}
	decodeBody(t, rr, &created)

	rr = doJSON(t, handler, "POST", "/api/session/acknowledge", created.SessionID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Acknowledge returned %d", rr.Code)
	}
	return created.SessionID
}

func TestGetStations(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, "GET", "/api/stations", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var stations []map[string]interface{}
	decodeBody(t, rr, &stations)

	if len(stations) != 3 {
		t.Fatalf("Expected 3 stations, got %d", len(stations))
	}

	// Roster order is row order
	if stations[0]["id"] != "kexp" || stations[1]["id"] != "wfmu" || stations[2]["id"] != "pirate" {
		t.Errorf("Unexpected roster order: %v %v %v", stations[0]["id"], stations[1]["id"], stations[2]["id"])
	}

	// Bad coordinates keep the station listed but never placed
	if stations[2]["placeable"] != false {
		t.Error("Station with bad coordinates should not be placeable")
	}
	if _, hasLat := stations[2]["lat"]; hasLat {
		t.Error("Unplaceable station should not expose coordinates")
	}
	if stations[0]["placeable"] != true {
		t.Error("Station with valid coordinates should be placeable")
	}
	if lat, ok := stations[0]["lat"].(float64); !ok || lat != 47.6654 {
		t.Errorf("Expected kexp lat 47.6654, got %v", stations[0]["lat"])
	}
}

func TestGetDates(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, "GET", "/api/dates", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var dates []struct {
		Tab   string `json:"tab"`
		Title string `json:"title"`
	}
	decodeBody(t, rr, &dates)

	if len(dates) != 2 {
		t.Fatalf("Expected 2 dates, got %d", len(dates))
	}
	if dates[0].Tab != "Feb22" || dates[0].Title != "February 22" {
		t.Errorf("Unexpected first date: %+v", dates[0])
	}
	if dates[1].Tab != "Feb23" || dates[1].Title != "February 23" {
		t.Errorf("Unexpected second date: %+v", dates[1])
	}
}

func TestSessionGate(t *testing.T) {
	_, handler := newTestServer(t)

	// Fresh session that has not acknowledged the notice
	rr := doJSON(t, handler, "POST", "/api/session", "", nil)
	var created struct {
		SessionID string `json:"sessionId"`
	}
	decodeBody(t, rr, &created)

	tests := []struct {
		name       string
		sessionID  string
		wantStatus int
	}{
		{"missing session id", "", http.StatusBadRequest},
		{"unknown session id", "not-a-session", http.StatusNotFound},
		{"unacknowledged session", created.SessionID, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, handler, "GET", "/api/selection", tt.sessionID, nil)
			if rr.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}

	// Acknowledging clears the gate
	rr = doJSON(t, handler, "POST", "/api/session/acknowledge", created.SessionID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Acknowledge returned %d", rr.Code)
	}
	rr = doJSON(t, handler, "GET", "/api/selection", created.SessionID, nil)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 after acknowledgement, got %d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, handler := newTestServer(t)
	sessionID := newAcknowledgedSession(t, handler)

	paths := []string{
		"/api/session",
		"/api/session/acknowledge",
		"/api/selection/date",
		"/api/selection/station",
		"/api/player/toggle",
		"/api/player/seek",
		"/api/player/volume",
		"/api/player/mute",
		"/api/player/events",
	}

	for _, path := range paths {
		rr := doJSON(t, handler, "GET", path, sessionID, nil)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("GET %s: expected 405, got %d", path, rr.Code)
		}
	}
}

type selectionTestView struct {
	SelectedDate      string `json:"selectedDate"`
	SelectedStationID string `json:"selectedStationId"`
	Title             string `json:"title"`
	Context           string `json:"context"`
	StationName       string `json:"stationName"`
	AudioRef          string `json:"audioRef"`
	Stations          []struct {
		StationID string `json:"stationId"`
		Active    bool   `json:"active"`
	} `json:"stations"`
	Map struct {
		CenterLat   float64 `json:"centerLat"`
		CenterLng   float64 `json:"centerLng"`
		Zoom        int     `json:"zoom"`
		OpenPopupID string  `json:"openPopupId"`
	} `json:"map"`
}

func TestAcknowledgeSelectsDefaultDate(t *testing.T) {
	_, handler := newTestServer(t)
	sessionID := newAcknowledgedSession(t, handler)

	rr := doJSON(t, handler, "GET", "/api/selection", sessionID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var view selectionTestView
	decodeBody(t, rr, &view)

	if view.SelectedDate != "Feb22" {
		t.Errorf("Expected default date Feb22, got %q", view.SelectedDate)
	}
	if view.Title != "February 22" {
		t.Errorf("Expected title February 22, got %q", view.Title)
	}
	if view.Context != "Week one of the broadcast" {
		t.Errorf("Unexpected context: %q", view.Context)
	}
	// First roster-order station with an entry gets auto-selected
	if view.SelectedStationID != "kexp" {
		t.Errorf("Expected kexp selected, got %q", view.SelectedStationID)
	}
	if view.AudioRef != "/clips/kexp-feb22.mp3" {
		t.Errorf("Unexpected audio ref: %q", view.AudioRef)
	}
	if len(view.Stations) != 2 {
		t.Fatalf("Expected 2 list rows, got %d", len(view.Stations))
	}
	if !view.Stations[0].Active || view.Stations[1].Active {
		t.Error("Exactly the first row should carry the active highlight")
	}
	if view.Map.CenterLat != 47.6654 || view.Map.CenterLng != -122.3770 {
		t.Errorf("Map not centered on selected station: %+v", view.Map)
	}
	if view.Map.OpenPopupID != "kexp" {
		t.Errorf("Expected kexp popup open, got %q", view.Map.OpenPopupID)
	}
}

func TestDateSwitchFallsBackToFirstEntry(t *testing.T) {
	_, handler := newTestServer(t)
	sessionID := newAcknowledgedSession(t, handler)

	// kexp has no Feb23 entry, so the selection falls back in roster order
	rr := doJSON(t, handler, "POST", "/api/selection/date", sessionID, map[string]string{"date": "Feb23"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var view selectionTestView
	decodeBody(t, rr, &view)

	if view.SelectedDate != "Feb23" {
		t.Errorf("Expected Feb23, got %q", view.SelectedDate)
	}
	if view.SelectedStationID != "wfmu" {
		t.Errorf("Expected fallback to wfmu, got %q", view.SelectedStationID)
	}
	if view.AudioRef != "/clips/wfmu-feb23.mp3" {
		t.Errorf("Unexpected audio ref: %q", view.AudioRef)
	}
	if view.Map.CenterLat != 40.7439 {
		t.Errorf("Map should recenter on wfmu, got lat %v", view.Map.CenterLat)
	}
}

func TestDateSwitchKeepsStationWithEntry(t *testing.T) {
	_, handler := newTestServer(t)
	sessionID := newAcknowledgedSession(t, handler)

	doJSON(t, handler, "POST", "/api/selection/station", sessionID, map[string]string{"stationId": "wfmu"})

	rr := doJSON(t, handler, "POST", "/api/selection/date", sessionID, map[string]string{"date": "Feb23"})
	var view selectionTestView
	decodeBody(t, rr, &view)

	// wfmu has an entry on both dates, so it survives the switch
	if view.SelectedStationID != "wfmu" {
		t.Errorf("Expected wfmu to stay selected, got %q", view.SelectedStationID)
	}
	if view.AudioRef != "/clips/wfmu-feb23.mp3" {
		t.Errorf("Audio should follow the new date, got %q", view.AudioRef)
	}
}

func TestUnknownDateIsIgnored(t *testing.T) {
	_, handler := newTestServer(t)
	sessionID := newAcknowledgedSession(t, handler)

	rr := doJSON(t, handler, "POST", "/api/selection/date", sessionID, map[string]string{"date": "Mar01"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var view selectionTestView
	decodeBody(t, rr, &view)

	if view.SelectedDate != "Feb22" {
		t.Errorf("Unknown date should leave the selection untouched, got %q", view.SelectedDate)
	}
	if view.SelectedStationID != "kexp" {
		t.Errorf("Unknown date should leave the station untouched, got %q", view.SelectedStationID)
	}
}

func TestSelectUnplaceableStationSkipsMapMoves(t *testing.T) {
	_, handler := newTestServer(t)
	sessionID := newAcknowledgedSession(t, handler)

	doJSON(t, handler, "POST", "/api/selection/date", sessionID, map[string]string{"date": "Feb23"})

	rr := doJSON(t, handler, "POST", "/api/selection/station", sessionID, map[string]string{"stationId": "pirate"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var view selectionTestView
	decodeBody(t, rr, &view)

	if view.SelectedStationID != "pirate" {
		t.Errorf("Expected pirate selected, got %q", view.SelectedStationID)
	}
	// Blank cells get the configured placeholders
	if view.AudioRef != "#" {
		t.Errorf("Expected placeholder audio ref, got %q", view.AudioRef)
	}
	// The map stays where the previous (placeable) selection put it
	if view.Map.CenterLat != 40.7439 {
		t.Errorf("Map should not move for an unplaceable station, got lat %v", view.Map.CenterLat)
	}
	if view.Map.OpenPopupID != "wfmu" {
		t.Errorf("Popup should not change for an unplaceable station, got %q", view.Map.OpenPopupID)
	}
}

func TestSelectStationWithoutEntryIsIgnored(t *testing.T) {
	_, handler := newTestServer(t)
	sessionID := newAcknowledgedSession(t, handler)

	doJSON(t, handler, "POST", "/api/selection/date", sessionID, map[string]string{"date": "Feb23"})

	// kexp exists in the roster but has no Feb23 entry
	rr := doJSON(t, handler, "POST", "/api/selection/station", sessionID, map[string]string{"stationId": "kexp"})
	var view selectionTestView
	decodeBody(t, rr, &view)

	if view.SelectedStationID != "wfmu" {
		t.Errorf("Selection of station without a date entry should be a no-op, got %q", view.SelectedStationID)
	}
}

func TestHealthCheck(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, "GET", "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var health struct {
		Status   string `json:"status"`
		Catalog  string `json:"catalog"`
		Stations int    `json:"stationCount"`
		Dates    int    `json:"dateCount"`
	}
	decodeBody(t, rr, &health)

	if health.Status != "healthy" {
		t.Errorf("Expected healthy status, got %q", health.Status)
	}
	if health.Stations != 3 || health.Dates != 2 {
		t.Errorf("Unexpected counts: %d stations, %d dates", health.Stations, health.Dates)
	}
}

func TestHealthCheckDegradedWithEmptyCatalog(t *testing.T) {
	dataDir := t.TempDir()
	clipsDir := t.TempDir()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ms, err := NewMapServer(testConfig(dataDir, clipsDir), logger)
	if err != nil {
		t.Fatalf("Failed to create map server: %v", err)
	}
	handler := ms.setupRoutes()

	// No tabs written: the load fails and the catalog stays empty
	if err := ms.LoadCatalog(context.Background()); err == nil {
		t.Fatal("Expected load failure with missing tabs")
	}

	rr := doJSON(t, handler, "GET", "/health", "", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", rr.Code)
	}

	var health struct {
		Status  string `json:"status"`
		Catalog string `json:"catalog"`
	}
	decodeBody(t, rr, &health)

	if health.Status != "degraded" || health.Catalog != "empty" {
		t.Errorf("Expected degraded/empty, got %q/%q", health.Status, health.Catalog)
	}
}

func TestLoadFailureKeepsPreviousCatalog(t *testing.T) {
	ms, _ := newTestServer(t)

	// Point the loader at a directory with no tabs and reload
	before := len(ms.catalog.Roster())
	ms.loader = sheets.NewLoader(sheets.NewDirSource(t.TempDir()), ms.logger)

	if err := ms.LoadCatalog(context.Background()); err == nil {
		t.Fatal("Expected load failure")
	}
	if len(ms.catalog.Roster()) != before {
		t.Error("Failed reload should leave the previous catalog in place")
	}
}

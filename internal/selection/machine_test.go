package selection

import (
	"testing"

	"aircheck/internal/catalog"
	"aircheck/internal/config"
	"aircheck/internal/tabular"

	"github.com/sirupsen/logrus"
)

type fakePlayer struct {
	loaded []string
}

func (p *fakePlayer) LoadSource(url string) {
	p.loaded = append(p.loaded, url)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel) // Reduce noise in tests
	return logger
}

// testCatalog builds: stations s1 (A) and s2 (B); Feb22 has entries for
// both, Feb23 only for s1.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cfg := config.DefaultConfig()
	tables := map[string]tabular.Table{
		"Master": tabular.Parse("id,name,lat,lng\n" +
			"s1,Station A,41.88,-87.63\n" +
			"s2,Station B,41.90,-87.65\n"),
		"Feb22": tabular.Parse("id,description,audio\n" +
			"s1,A on the 22nd,a22.mp3\n" +
			"s2,B on the 22nd,b22.mp3\n"),
		"Feb23": tabular.Parse("id,description,audio\n" +
			"s1,A on the 23rd,a23.mp3\n"),
	}

	roster, dates := catalog.Transform(tables, cfg, testLogger())
	cat := catalog.New()
	cat.Replace(roster, dates, []string{"Feb22", "Feb23"})
	return cat
}

func newTestMachine(t *testing.T) (*Machine, *Recorder, *fakePlayer) {
	t.Helper()

	recorder := NewRecorder()
	audio := &fakePlayer{}
	machine := NewMachine(testCatalog(t), recorder, recorder, audio, 14, testLogger())
	return machine, recorder, audio
}

func TestStartSelectsDefaultDateAndFirstStation(t *testing.T) {
	machine, recorder, audio := newTestMachine(t)

	machine.Start("Feb22")

	view := machine.View()
	if view.SelectedDate != "Feb22" {
		t.Errorf("selectedDate = %q, want Feb22", view.SelectedDate)
	}
	if view.SelectedStationID != "s1" {
		t.Errorf("selectedStationId = %q, want s1 (first in roster order)", view.SelectedStationID)
	}
	if view.Title != "February 22" {
		t.Errorf("title = %q", view.Title)
	}
	if len(audio.loaded) != 1 || audio.loaded[0] != "a22.mp3" {
		t.Errorf("audio loads = %v, want [a22.mp3]", audio.loaded)
	}
	if recorder.ActiveID() != "s1" {
		t.Errorf("active row = %q, want s1", recorder.ActiveID())
	}
}

func TestSetDateUnknownIsNoOp(t *testing.T) {
	machine, _, _ := newTestMachine(t)
	machine.Start("Feb22")

	machine.SetDate("Mar01")

	if got := machine.View().SelectedDate; got != "Feb22" {
		t.Errorf("unknown date changed selection to %q", got)
	}
}

func TestSetDateKeepsValidStation(t *testing.T) {
	machine, _, audio := newTestMachine(t)
	machine.Start("Feb22")
	machine.SelectStation("s1")

	machine.SetDate("Feb23")

	view := machine.View()
	if view.SelectedStationID != "s1" {
		t.Errorf("station with entry under new date should survive, got %q", view.SelectedStationID)
	}
	if last := audio.loaded[len(audio.loaded)-1]; last != "a23.mp3" {
		t.Errorf("audio should reload for the new date, got %q", last)
	}
}

func TestSetDateFallsBackToFirstWithEntry(t *testing.T) {
	machine, _, _ := newTestMachine(t)
	machine.Start("Feb22")
	machine.SelectStation("s2")

	// s2 has no Feb23 entry; the fallback is the first roster-order station
	// that does.
	machine.SetDate("Feb23")

	view := machine.View()
	if view.SelectedStationID != "s1" {
		t.Errorf("fallback selected %q, want s1", view.SelectedStationID)
	}
	if len(view.Rows) != 1 || view.Rows[0].StationID != "s1" {
		t.Errorf("Feb23 list should contain only s1, got %+v", view.Rows)
	}
	if !view.Rows[0].Active {
		t.Error("fallback station should carry the active highlight")
	}
}

func TestSelectStationMovesHighlightExactly(t *testing.T) {
	machine, recorder, _ := newTestMachine(t)
	machine.Start("Feb22")
	machine.SelectStation("s1")

	machine.SelectStation("s2")

	view := machine.View()
	activeCount := 0
	for _, row := range view.Rows {
		if row.Active {
			activeCount++
			if row.StationID != "s2" {
				t.Errorf("active row is %q, want s2", row.StationID)
			}
		}
	}
	if activeCount != 1 {
		t.Errorf("active rows = %d, want exactly 1", activeCount)
	}
	if recorder.ActiveID() != "s2" {
		t.Errorf("recorder active = %q, want s2", recorder.ActiveID())
	}
}

func TestSelectStationRecentersMap(t *testing.T) {
	machine, recorder, _ := newTestMachine(t)
	machine.Start("Feb22")

	machine.SelectStation("s2")

	state := recorder.MapState()
	if state.CenterLat != 41.90 || state.CenterLng != -87.65 {
		t.Errorf("map center = (%v, %v)", state.CenterLat, state.CenterLng)
	}
	if state.Zoom != 14 {
		t.Errorf("zoom = %d, want 14", state.Zoom)
	}
	if state.OpenPopupID != "s2" {
		t.Errorf("open popup = %q, want s2", state.OpenPopupID)
	}
}

func TestSelectStationInvalidIsNoOp(t *testing.T) {
	machine, _, audio := newTestMachine(t)
	machine.Start("Feb22")
	machine.SelectStation("s1")

	tests := []struct {
		name      string
		stationID string
	}{
		{name: "unknown station", stationID: "s99"},
		{name: "no entry for current date", stationID: "s2"},
	}

	machine.SetDate("Feb23") // s2 has no entry here
	loads := len(audio.loaded)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine.SelectStation(tt.stationID)

			view := machine.View()
			if view.SelectedStationID != "s1" {
				t.Errorf("invalid selection changed station to %q", view.SelectedStationID)
			}
			if len(audio.loaded) != loads {
				t.Error("invalid selection must not touch the audio player")
			}
		})
	}
}

func TestSetDateRendersPopupsInPlace(t *testing.T) {
	machine, recorder, _ := newTestMachine(t)
	machine.Start("Feb22")

	machine.SetDate("Feb23")

	popups := recorder.MapState().Popups
	if popups["s1"].Description != "A on the 23rd" {
		t.Errorf("popup content not updated for new date: %+v", popups["s1"])
	}
}

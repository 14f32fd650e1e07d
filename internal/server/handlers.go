package server

import (
	"net/http"
	"path/filepath"
)

// handleHome serves the main SPA / index file from the configured static dir.
func (ms *MapServer) handleHome(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(ms.config.Server.StaticDir, "index.html"))
}

// stationView is a roster entry as exposed to the client. Unplaceable
// stations stay in the listing but are flagged so no marker gets placed.
type stationView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Lat         float64 `json:"lat,omitempty"`
	Lng         float64 `json:"lng,omitempty"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Placeable   bool    `json:"placeable"`
}

// handleGetStations returns the full roster in roster order.
func (ms *MapServer) handleGetStations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	roster := ms.catalog.Roster()
	views := make([]stationView, 0, len(roster))
	for _, station := range roster {
		view := stationView{
			ID:          station.ID,
			Name:        station.Name,
			Description: station.Description,
			Icon:        station.Icon,
			Placeable:   station.Placeable(),
		}
		// NaN is not representable in JSON; leave coordinates out entirely.
		if view.Placeable {
			view.Lat = station.Lat
			view.Lng = station.Lng
		}
		views = append(views, view)
	}

	ms.respondJSON(w, views)
}

// dateView is one dropdown option.
type dateView struct {
	Tab   string `json:"tab"`
	Title string `json:"title"`
}

// handleGetDates returns the date tabs in dropdown order.
func (ms *MapServer) handleGetDates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	order := ms.catalog.DateOrder()
	views := make([]dateView, 0, len(order))
	for _, tab := range order {
		content, ok := ms.catalog.Date(tab)
		if !ok {
			continue
		}
		views = append(views, dateView{Tab: tab, Title: content.Title})
	}

	ms.respondJSON(w, views)
}

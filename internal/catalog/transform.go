// Package catalog reshapes raw tab records into the station roster and the
// per-date content overlays, and holds the result for concurrent readers.
package catalog

import (
	"math"
	"strconv"
	"strings"

	"aircheck/internal/config"
	"aircheck/internal/tabular"
	"aircheck/pkg/models"

	"github.com/sirupsen/logrus"
)

// Transform converts the fetched tables into the roster and the date-content
// map. The table named by the master tab becomes stations (in row order);
// every other table becomes one DateContent keyed by its tab identifier.
func Transform(tables map[string]tabular.Table, cfg *config.Config, logger *logrus.Logger) ([]models.Station, map[string]models.DateContent) {
	var roster []models.Station
	dates := make(map[string]models.DateContent, len(tables))

	for name, table := range tables {
		if name == cfg.Sheets.MasterTab {
			roster = buildRoster(table, logger)
			continue
		}
		dates[name] = buildDateContent(name, table, cfg)
	}

	return roster, dates
}

// buildRoster maps master-tab records to stations. Bad coordinates coerce to
// NaN so the station is detectably unplaceable; it stays in the roster and in
// text listings but never becomes a map marker.
func buildRoster(table tabular.Table, logger *logrus.Logger) []models.Station {
	roster := make([]models.Station, 0, len(table.Records))

	for _, record := range table.Records {
		id := strings.TrimSpace(record["id"])
		if id == "" {
			continue
		}

		station := models.Station{
			ID:          id,
			Name:        record["name"],
			Lat:         coerceCoordinate(record["lat"]),
			Lng:         coerceCoordinate(record["lng"]),
			Description: record["description"],
			Icon:        record["icon"],
		}

		if !station.Placeable() {
			logger.WithFields(logrus.Fields{
				"station": station.ID,
				"lat":     record["lat"],
				"lng":     record["lng"],
			}).Warn("Station has invalid coordinates, omitting from map placement")
		}

		roster = append(roster, station)
	}

	return roster
}

// buildDateContent maps one date tab's records to station entries. Records
// with a blank id are dropped; blank descriptions and audio references get
// the configured placeholders.
func buildDateContent(tab string, table tabular.Table, cfg *config.Config) models.DateContent {
	content := models.DateContent{
		Tab:      tab,
		Title:    deriveTitle(tab, cfg),
		Stations: make(map[string]models.DateStationEntry, len(table.Records)),
	}

	for _, record := range table.Records {
		if context, ok := record["context"]; ok && content.Context == "" {
			content.Context = context
		}

		id := strings.TrimSpace(record["id"])
		if id == "" {
			continue
		}

		description := record["description"]
		if strings.TrimSpace(description) == "" {
			description = cfg.Content.DescriptionPlaceholder
		}

		audioRef := record["audio"]
		if strings.TrimSpace(audioRef) == "" {
			audioRef = cfg.Content.AudioPlaceholder
		}

		content.Stations[id] = models.DateStationEntry{
			Description: description,
			AudioRef:    audioRef,
		}
	}

	return content
}

// deriveTitle turns a tab identifier into a display title by stripping the
// known prefix and prepending the fixed label, e.g. "Feb22" -> "February 22".
func deriveTitle(tab string, cfg *config.Config) string {
	day := strings.TrimPrefix(tab, cfg.Content.TabPrefix)
	return cfg.Content.TitleLabel + " " + day
}

// coerceCoordinate parses a latitude/longitude string, yielding NaN on any
// non-numeric input so downstream placement can detect it.
func coerceCoordinate(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return value
}

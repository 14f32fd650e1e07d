package catalog

import (
	"sync"

	"aircheck/pkg/models"
)

// Catalog holds the loaded roster and date content behind a read lock so the
// watcher can swap in a fresh load while request handlers keep reading.
type Catalog struct {
	mu        sync.RWMutex
	roster    []models.Station
	dates     map[string]models.DateContent
	dateOrder []string
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{
		dates: make(map[string]models.DateContent),
	}
}

// Replace atomically swaps in a freshly transformed roster and date map.
// dateOrder preserves the configured tab order for the date dropdown.
func (c *Catalog) Replace(roster []models.Station, dates map[string]models.DateContent, dateOrder []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.roster = roster
	c.dates = dates
	c.dateOrder = dateOrder
}

// Roster returns the stations in roster order
func (c *Catalog) Roster() []models.Station {
	c.mu.RLock()
	defer c.mu.RUnlock()

	roster := make([]models.Station, len(c.roster))
	copy(roster, c.roster)
	return roster
}

// Station looks up one station by id
func (c *Catalog) Station(id string) (models.Station, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, station := range c.roster {
		if station.ID == id {
			return station, true
		}
	}
	return models.Station{}, false
}

// Date looks up the content for one date tab
func (c *Catalog) Date(tab string) (models.DateContent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	content, ok := c.dates[tab]
	return content, ok
}

// DateOrder returns the date tab identifiers in dropdown order
func (c *Catalog) DateOrder() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	order := make([]string, len(c.dateOrder))
	copy(order, c.dateOrder)
	return order
}

// Empty reports whether the catalog has no content, the state the server
// serves in when the initial load failed.
func (c *Catalog) Empty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.roster) == 0 && len(c.dates) == 0
}

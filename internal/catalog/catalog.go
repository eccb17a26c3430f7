// Package catalog holds the immutable route records the engine serves.
// Routes are loaded once at startup by an external collaborator; the
// catalog only answers lookups and search queries after that.
package catalog

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tripworks/seatline/internal/model"
)

// Catalog is an in-process registry of routes keyed by identifier.
type Catalog struct {
	mu     sync.RWMutex
	routes map[string]model.Route
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{routes: make(map[string]model.Route)}
}

// Add registers a route. Registering an identifier twice returns
// ErrRouteExists; routes are immutable once loaded.
func (c *Catalog) Add(route model.Route) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.routes[route.ID]; ok {
		return model.ErrRouteExists
	}
	c.routes[route.ID] = route
	return nil
}

// Get returns the route with the given identifier or ErrRouteNotFound.
func (c *Catalog) Get(routeID string) (model.Route, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	route, ok := c.routes[routeID]
	if !ok {
		return model.Route{}, model.ErrRouteNotFound
	}
	return route, nil
}

// List returns every route ordered by departure time, earliest first.
func (c *Catalog) List() []model.Route {
	c.mu.RLock()
	out := make([]model.Route, 0, len(c.routes))
	for _, r := range c.routes {
		out = append(out, r)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DepartureTime.Equal(out[j].DepartureTime) {
			return out[i].DepartureTime.Before(out[j].DepartureTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Search filters routes by origin, destination and departure day. Empty
// origin or destination match everything; a zero day matches any date.
// City comparison is case-insensitive.
func (c *Catalog) Search(origin, destination string, day time.Time) []model.Route {
	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)

	var out []model.Route
	for _, r := range c.List() {
		if origin != "" && !strings.EqualFold(r.Origin, origin) {
			continue
		}
		if destination != "" && !strings.EqualFold(r.Destination, destination) {
			continue
		}
		if !day.IsZero() {
			dy, dm, dd := day.UTC().Date()
			ry, rm, rd := r.DepartureTime.UTC().Date()
			if dy != ry || dm != rm || dd != rd {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// SeatPlan generates the seat numbers for a pool of the given size, four
// seats per lettered row: A1..A4, B1..B4 and so on. Pools deeper than 26
// rows continue with double letters (AA, AB, ...).
func SeatPlan(total int) []string {
	if total <= 0 {
		return nil
	}
	const perRow = 4
	out := make([]string, 0, total)
	for i := 0; i < total; i++ {
		out = append(out, rowLabel(i/perRow)+strconv.Itoa(i%perRow+1))
	}
	return out
}

// rowLabel converts a zero-based row index into a spreadsheet-style letter
// label: 0 -> A, 25 -> Z, 26 -> AA.
func rowLabel(row int) string {
	label := ""
	for {
		label = string(rune('A'+row%26)) + label
		row = row/26 - 1
		if row < 0 {
			return label
		}
	}
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tripworks/seatline/internal/catalog"
	"github.com/tripworks/seatline/internal/clock"
	"github.com/tripworks/seatline/internal/inventory"
	"github.com/tripworks/seatline/internal/model"
)

// RouteHandler serves the public route catalog.
type RouteHandler struct {
	catalog   *catalog.Catalog
	inventory *inventory.SeatInventory
	clk       clock.Clock
}

// NewRouteHandler wires the handler to the catalog and inventory.
func NewRouteHandler(cat *catalog.Catalog, inv *inventory.SeatInventory, clk clock.Clock) *RouteHandler {
	return &RouteHandler{catalog: cat, inventory: inv, clk: clk}
}

// List returns all routes, optionally filtered by origin, destination and
// departure date (YYYY-MM-DD). Each entry carries a live seats_available
// count derived from the seat snapshot.
func (h *RouteHandler) List(c echo.Context) error {
	var day time.Time
	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		day = parsed
	}

	routes := h.catalog.Search(c.QueryParam("origin"), c.QueryParam("destination"), day)
	now := h.clk.Now()

	out := make([]echo.Map, 0, len(routes))
	for _, r := range routes {
		out = append(out, h.routePayload(r, now))
	}
	return c.JSON(http.StatusOK, echo.Map{"routes": out})
}

// Detail returns a single route by identifier.
func (h *RouteHandler) Detail(c echo.Context) error {
	route, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, h.routePayload(route, h.clk.Now()))
}

func (h *RouteHandler) routePayload(r model.Route, now time.Time) echo.Map {
	return echo.Map{
		"id":              r.ID,
		"kind":            string(r.Kind),
		"origin":          r.Origin,
		"destination":     r.Destination,
		"departure_time":  r.DepartureTime.UTC().Format(time.RFC3339),
		"arrival_time":    r.ArrivalTime.UTC().Format(time.RFC3339),
		"vehicle_number":  r.VehicleNumber,
		"seats_total":     r.SeatsTotal,
		"seats_available": h.availableSeats(r.ID, now),
		"price_cents":     r.PriceCents,
	}
}

// availableSeats counts seats a hold attempt would currently succeed on:
// free seats plus held seats whose lease already lapsed.
func (h *RouteHandler) availableSeats(routeID string, now time.Time) int {
	seats, err := h.inventory.Snapshot(routeID)
	if err != nil {
		return 0
	}
	n := 0
	for _, s := range seats {
		switch s.State {
		case model.SeatAvailable:
			n++
		case model.SeatHeld:
			if !s.HoldExpiry.After(now) {
				n++
			}
		}
	}
	return n
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tripworks/seatline/internal/model"
)

func TestGroupSeatRows(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seats := []model.Seat{
		{SeatNumber: "A1", State: model.SeatAvailable},
		{SeatNumber: "A2", State: model.SeatBooked, BookingID: "b-1"},
		{SeatNumber: "B1", State: model.SeatHeld, HoldExpiry: now.Add(time.Minute)},
		{SeatNumber: "B2", State: model.SeatHeld, HoldExpiry: now.Add(-time.Minute)},
	}

	rows := groupSeatRows(seats, now)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Row != "A" || rows[1].Row != "B" {
		t.Fatalf("row labels = %q, %q", rows[0].Row, rows[1].Row)
	}
	if got := rows[0].Seats[1].State; got != "booked" {
		t.Errorf("A2 state = %q, want booked", got)
	}
	if got := rows[1].Seats[0].State; got != "held" {
		t.Errorf("B1 state = %q, want held", got)
	}
	// A lapsed hold is presented as available even before the sweeper runs.
	if got := rows[1].Seats[1].State; got != "available" {
		t.Errorf("B2 state = %q, want available", got)
	}
}

func TestRowPrefix(t *testing.T) {
	t.Parallel()

	cases := map[string]string{"A1": "A", "B12": "B", "AA3": "AA", "X": "X"}
	for in, want := range cases {
		if got := rowPrefix(in); got != want {
			t.Errorf("rowPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSeatMapEndpoint(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("route-1")

	if err := fx.routes.SeatMap(c); err != nil {
		t.Fatalf("SeatMap: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`"route_id":"route-1"`, `"seat_number":"A1"`, `"row":"B"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %s: %s", want, body)
		}
	}
}

func TestSeatMapUnknownRoute(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("route-404")

	if err := fx.routes.SeatMap(c); err != nil {
		t.Fatalf("SeatMap: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

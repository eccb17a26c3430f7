package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tripworks/seatline/internal/model"
)

// SeatMap returns the route's seat map grouped into rows. The snapshot is a
// point-in-time view; by the time the client holds a seat someone else may
// have taken it, which the hold call reports.
func (h *RouteHandler) SeatMap(c echo.Context) error {
	routeID := c.Param("id")
	if _, err := h.catalog.Get(routeID); err != nil {
		return domainError(c, err)
	}
	seats, err := h.inventory.Snapshot(routeID)
	if err != nil {
		return domainError(c, err)
	}
	now := h.clk.Now()
	return c.JSON(http.StatusOK, echo.Map{
		"route_id": routeID,
		"rows":     groupSeatRows(seats, now),
	})
}

// seatView is a client-facing seat. A held seat whose lease lapsed is shown
// as available; only the inventory's hold call transitions it.
type seatView struct {
	SeatNumber string `json:"seat_number"`
	State      string `json:"state"`
}

type seatRow struct {
	Row   string     `json:"row"`
	Seats []seatView `json:"seats"`
}

// groupSeatRows folds an ordered seat snapshot into rows keyed by the seat
// number's letter prefix. Snapshot order is row order, so one pass suffices.
func groupSeatRows(seats []model.Seat, now time.Time) []seatRow {
	var rows []seatRow
	for _, s := range seats {
		row := rowPrefix(s.SeatNumber)
		if len(rows) == 0 || rows[len(rows)-1].Row != row {
			rows = append(rows, seatRow{Row: row})
		}
		state := s.State
		if state == model.SeatHeld && !s.HoldExpiry.After(now) {
			state = model.SeatAvailable
		}
		rows[len(rows)-1].Seats = append(rows[len(rows)-1].Seats, seatView{
			SeatNumber: s.SeatNumber,
			State:      string(state),
		})
	}
	return rows
}

func rowPrefix(seatNumber string) string {
	for i := 0; i < len(seatNumber); i++ {
		if seatNumber[i] >= '0' && seatNumber[i] <= '9' {
			return seatNumber[:i]
		}
	}
	return seatNumber
}

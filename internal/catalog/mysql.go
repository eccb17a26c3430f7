package catalog

import (
	"context"
	"database/sql"

	"github.com/tripworks/seatline/internal/model"
)

// MySQLStore reads route records from the routes table. The engine only
// consumes routes; writing them is the catalog-population collaborator's
// job, outside this service.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore returns a route store bound to the provided database.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// ListRoutes returns every route in the catalog table ordered by departure
// time.
func (s *MySQLStore) ListRoutes(ctx context.Context) ([]model.Route, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, origin, destination, departure_time, arrival_time, vehicle_number, seats_total, price_cents
         FROM routes
         ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Route
	for rows.Next() {
		var r model.Route
		var kind string
		if err := rows.Scan(&r.ID, &kind, &r.Origin, &r.Destination,
			&r.DepartureTime, &r.ArrivalTime, &r.VehicleNumber, &r.SeatsTotal, &r.PriceCents); err != nil {
			return nil, err
		}
		r.Kind = model.RouteKind(kind)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

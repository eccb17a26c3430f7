package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/tripworks/seatline/internal/model"
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// MySQLStore is a Store backed by the bookings table. The unique index on
// idempotency_key makes Append race-safe across processes: a concurrent
// retry loses the insert and is answered with the prior record.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore returns a ledger bound to the provided database.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) Append(ctx context.Context, booking model.Booking) (model.Booking, error) {
	if prior, err := s.FindByIdempotencyKey(ctx, booking.IdempotencyKey); err != nil {
		return model.Booking{}, err
	} else if prior != nil {
		return *prior, nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings (id, route_id, seat_number, holder, price_cents, status, idempotency_key, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID, booking.RouteID, booking.SeatNumber, booking.Holder,
		booking.PriceCents, string(booking.Status), booking.IdempotencyKey,
		booking.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			// Lost the insert race; the prior record answers the retry.
			prior, ferr := s.FindByIdempotencyKey(ctx, booking.IdempotencyKey)
			if ferr != nil {
				return model.Booking{}, ferr
			}
			if prior != nil {
				return *prior, nil
			}
		}
		return model.Booking{}, err
	}
	return booking, nil
}

func (s *MySQLStore) Find(ctx context.Context, bookingID string) (model.Booking, error) {
	row := s.db.QueryRowContext(ctx, selectBooking+` WHERE id = ?`, bookingID)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return model.Booking{}, model.ErrBookingNotFound
	}
	return b, err
}

func (s *MySQLStore) FindByIdempotencyKey(ctx context.Context, key string) (*model.Booking, error) {
	row := s.db.QueryRowContext(ctx, selectBooking+` WHERE idempotency_key = ?`, key)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *MySQLStore) ListByHolder(ctx context.Context, holder string) ([]model.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		selectBooking+` WHERE holder = ? ORDER BY created_at DESC, id DESC`, holder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (s *MySQLStore) ListActive(ctx context.Context) ([]model.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		selectBooking+` WHERE status = ? ORDER BY created_at`, string(model.BookingStatusBooked))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (s *MySQLStore) MarkCancelled(ctx context.Context, bookingID string, cancelledAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, cancelled_at = ? WHERE id = ? AND status = ?`,
		string(model.BookingStatusCancelled),
		cancelledAt.UTC().Format("2006-01-02 15:04:05"),
		bookingID,
		string(model.BookingStatusBooked),
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the booking does not exist or it is already cancelled.
		if _, err := s.Find(ctx, bookingID); err != nil {
			return err
		}
		return model.ErrAlreadyCancelled
	}
	return nil
}

const selectBooking = `SELECT id, route_id, seat_number, holder, price_cents, status, idempotency_key, created_at, cancelled_at
FROM bookings`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (model.Booking, error) {
	var b model.Booking
	var status string
	var cancelledAt sql.NullTime
	if err := row.Scan(&b.ID, &b.RouteID, &b.SeatNumber, &b.Holder, &b.PriceCents,
		&status, &b.IdempotencyKey, &b.CreatedAt, &cancelledAt); err != nil {
		return model.Booking{}, err
	}
	b.Status = model.BookingStatus(status)
	if cancelledAt.Valid {
		at := cancelledAt.Time
		b.CancelledAt = &at
	}
	return b, nil
}

func collectBookings(rows *sql.Rows) ([]model.Booking, error) {
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

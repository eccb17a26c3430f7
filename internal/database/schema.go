package database

import (
	"context"
	"database/sql"
)

// schema holds the DDL for the two tables the engine touches. The routes
// table is written by the catalog-population collaborator; the engine only
// reads it. The unique index on bookings.idempotency_key is what makes
// confirm retries safe across processes.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS routes (
        id             VARCHAR(64)  NOT NULL,
        kind           VARCHAR(16)  NOT NULL,
        origin         VARCHAR(128) NOT NULL,
        destination    VARCHAR(128) NOT NULL,
        departure_time DATETIME     NOT NULL,
        arrival_time   DATETIME     NOT NULL,
        vehicle_number VARCHAR(64)  NOT NULL,
        seats_total    INT UNSIGNED NOT NULL,
        price_cents    INT UNSIGNED NOT NULL,
        PRIMARY KEY (id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
        id              VARCHAR(64)  NOT NULL,
        route_id        VARCHAR(64)  NOT NULL,
        seat_number     VARCHAR(8)   NOT NULL,
        holder          VARCHAR(128) NOT NULL,
        price_cents     INT UNSIGNED NOT NULL,
        status          VARCHAR(16)  NOT NULL,
        idempotency_key VARCHAR(128) NOT NULL,
        created_at      DATETIME     NOT NULL,
        cancelled_at    DATETIME     NULL,
        PRIMARY KEY (id),
        UNIQUE KEY uq_bookings_idempotency_key (idempotency_key),
        KEY idx_bookings_holder (holder, created_at),
        KEY idx_bookings_status (status)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the engine's tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

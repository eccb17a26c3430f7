package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tripworks/seatline/internal/booking"
	"github.com/tripworks/seatline/internal/catalog"
	"github.com/tripworks/seatline/internal/clock"
	"github.com/tripworks/seatline/internal/config"
	"github.com/tripworks/seatline/internal/database"
	"github.com/tripworks/seatline/internal/handler"
	"github.com/tripworks/seatline/internal/inventory"
	"github.com/tripworks/seatline/internal/ledger"
	"github.com/tripworks/seatline/internal/queue"
	"github.com/tripworks/seatline/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	clk := clock.NewSystem()
	cat := catalog.New()
	inv := inventory.New(clk)
	led := ledger.NewMySQLStore(db)

	// The catalog and seat pools are fixed at startup; fare or schedule
	// changes require a restart.
	routes, err := catalog.NewMySQLStore(db).ListRoutes(ctx)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	for _, r := range routes {
		if err := cat.Add(r); err != nil {
			log.Fatalf("catalog: add route %s: %v", r.ID, err)
		}
		if err := inv.AddRoute(r.ID, catalog.SeatPlan(r.SeatsTotal)); err != nil {
			log.Fatalf("inventory: add route %s: %v", r.ID, err)
		}
	}
	log.Printf("catalog: loaded %d routes", len(routes))

	// Replay the ledger so seats booked before the restart stay booked.
	active, err := led.ListActive(ctx)
	if err != nil {
		log.Fatalf("ledger: %v", err)
	}
	for _, b := range active {
		if err := inv.RestoreBooked(b.RouteID, b.SeatNumber, b.ID); err != nil {
			log.Printf("ledger replay: seat %s/%s for booking %s: %v", b.RouteID, b.SeatNumber, b.ID, err)
		}
	}
	log.Printf("ledger: replayed %d active bookings", len(active))

	alloc := booking.NewAllocationService(cat, inv, led, clk, booking.WithHoldTTL(cfg.HoldTTL))
	cancel := booking.NewCancellationService(cat, inv, led, clk)

	sweeper := booking.NewExpirySweeper(inv, cfg.SweepInterval)
	go sweeper.Run(ctx)

	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	rdb := config.NewRedisClient()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAPI(e,
		handler.NewRouteHandler(cat, inv, clk),
		handler.NewBookingHandler(alloc, cancel, led, cat, clk),
		&cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

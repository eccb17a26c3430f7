// Package router binds handlers to paths and applies the middleware layers.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tripworks/seatline/internal/config"
	"github.com/tripworks/seatline/internal/handler"
	"github.com/tripworks/seatline/internal/middleware"
)

// RegisterRoutes mounts the unauthenticated service endpoints.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI mounts the versioned API. The catalog endpoints are public;
// everything that holds, confirms or cancels requires a bearer token. The
// Redis cache covers only the route listing, never live seat or booking
// state, and the token bucket guards the mutation endpoints.
func RegisterAPI(e *echo.Echo, rh *handler.RouteHandler, bh *handler.BookingHandler, cfg *config.Config, rdb *redis.Client) {
	cacheCfg := config.LoadCacheConfig()
	rateCfg := config.LoadRateLimitConfig()

	v1 := e.Group("/v1")

	v1.GET("/routes", rh.List, middleware.NewRedisCache(cacheCfg, rdb))
	v1.GET("/routes/:id", rh.Detail)
	v1.GET("/routes/:id/seats", rh.SeatMap)

	protected := v1.Group("", middleware.JWTAuth(cfg.JWTSecret), middleware.NewTokenBucket(rateCfg, rdb))
	protected.POST("/routes/:id/hold", bh.HoldSeat)
	protected.DELETE("/holds/:token", bh.ReleaseHold)
	protected.POST("/bookings", bh.ConfirmBooking)
	protected.GET("/bookings", bh.ListBookings)
	protected.POST("/bookings/:id/cancel", bh.CancelBooking)
}

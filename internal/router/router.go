// Package router wires the HTTP routes to their handlers and
// middleware.  Public routes (health, availability) carry no
// authentication; the booking routes require a valid access token.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/onvent/seat-ledger/internal/config"
	"github.com/onvent/seat-ledger/internal/handler"
	"github.com/onvent/seat-ledger/internal/middleware"
)

// Register sets up every route of the service on the given Echo
// instance.
//
// Public:
//
//	GET /healthz
//	GET /v1/events/:id/availability  (cached, rate limited per IP)
//
// Authenticated (Bearer token from the external auth service):
//
//	POST   /v1/tickets/book
//	GET    /v1/my-tickets
//	DELETE /v1/tickets/:id
func Register(e *echo.Echo, b *handler.BookingHandler, cache *middleware.AvailabilityCache, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	limiter := middleware.NewTokenBucket(rlCfg, rdb)

	// Availability is public so clients can check seat counts before
	// authenticating.  The cache middleware serves repeated reads; the
	// facade invalidates per event on every reserve/cancel.
	e.GET("/v1/events/:id/availability", b.Availability, limiter, cache.Middleware())

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("CUSTOMER", "ADMIN"))
	auth.Use(limiter)
	auth.POST("/tickets/book", b.Book)
	auth.GET("/my-tickets", b.ListMyTickets)
	auth.DELETE("/tickets/:id", b.Cancel)
}

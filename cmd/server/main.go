package main

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/onvent/seat-ledger/internal/config"
	"github.com/onvent/seat-ledger/internal/database"
	"github.com/onvent/seat-ledger/internal/handler"
	"github.com/onvent/seat-ledger/internal/ledger"
	"github.com/onvent/seat-ledger/internal/middleware"
	"github.com/onvent/seat-ledger/internal/queue"
	"github.com/onvent/seat-ledger/internal/repository"
	"github.com/onvent/seat-ledger/internal/router"
	"github.com/onvent/seat-ledger/internal/service"
)

func main() {
	cfg := config.Load()

	// Events live in the store owned by the event management service;
	// the ledger only reads capacities and metadata from it.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("events database: %v", err)
	}
	defer db.Close()
	events := repository.NewEventRepo(db)

	// Redis is optional: without it the limiter and the availability
	// cache pass through and the ledger still enforces its invariants.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and availability cache disabled")
	}
	cache := middleware.NewAvailabilityCache(config.LoadCacheConfig(), rdb)

	ldg := ledger.New(events, ledger.NewGuard(cfg.GuardTimeout))
	svc := service.NewBookingService(ldg, events, service.NewAMQPPublisher(), cache)

	// Audit consumer: turns issued/cancelled broker events into
	// logs/ticket.log lines.  Runs its own reconnect loop.
	go func() {
		if err := queue.StartTicketConsumer(); err != nil {
			log.Printf("ticket consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, handler.NewBookingHandler(svc), cache, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

	addr := ":" + cfg.Port
	log.Printf("seat ledger listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

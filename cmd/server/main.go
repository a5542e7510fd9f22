package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/gate-boarding/internal/config"
	"github.com/iliyamo/gate-boarding/internal/database"
	"github.com/iliyamo/gate-boarding/internal/handler"
	"github.com/iliyamo/gate-boarding/internal/queue"
	"github.com/iliyamo/gate-boarding/internal/reconcile"
	"github.com/iliyamo/gate-boarding/internal/repository"
	"github.com/iliyamo/gate-boarding/internal/router"
)

func main() {
	// Load .env if present; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs response caching and per-device rate limiting.  A nil
	// client disables both; boarding itself never depends on Redis.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: cache and rate limiting disabled")
	}

	// Consume boarding.accepted events in the background.
	go func() {
		if err := queue.StartBoardingConsumer(); err != nil {
			log.Printf("boarding consumer stopped: %v", err)
		}
	}()

	store := repository.NewStore(db)
	engine := reconcile.NewEngine(store, reconcile.WithMaxAttempts(cfg.ScanMaxRetries))

	sessions := repository.NewSessionRepo(db)
	passengers := repository.NewPassengerRepo(db)
	claims := repository.NewSeatClaimRepo(db)
	watchlist := repository.NewWatchlistRepo(db)

	sessionH := handler.NewSessionHandler(sessions, passengers, claims, watchlist)
	scanH := handler.NewScanHandler(engine, watchlist, nil)
	passengerH := handler.NewPassengerHandler(passengers, engine)
	watchlistH := handler.NewWatchlistHandler(watchlist)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterBoarding(e, sessionH, scanH, passengerH, watchlistH, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-api/internal/config"
	"github.com/iliyamo/cinema-booking-api/internal/database"
	"github.com/iliyamo/cinema-booking-api/internal/handler"
	"github.com/iliyamo/cinema-booking-api/internal/middleware"
	"github.com/iliyamo/cinema-booking-api/internal/queue"
	"github.com/iliyamo/cinema-booking-api/internal/repository"
	"github.com/iliyamo/cinema-booking-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Redis is optional: a nil client disables caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	genres := repository.NewGenreRepo(db)
	actors := repository.NewActorRepo(db)
	movies := repository.NewMovieRepo(db)
	halls := repository.NewHallRepo(db)
	sessions := repository.NewSessionRepo(db)
	orders := repository.NewOrderRepo(db)

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, tokens)
	catalog := router.CatalogHandlers{
		Genres:   handler.NewGenreHandler(genres),
		Actors:   handler.NewActorHandler(actors),
		Movies:   handler.NewMovieHandler(movies, cfg.MediaRoot),
		Halls:    handler.NewHallHandler(halls),
		Sessions: handler.NewSessionHandler(sessions),
	}
	orderH := handler.NewOrderHandler(orders)

	e := echo.New()
	e.Use(middleware.Metrics())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e, cfg.MediaRoot)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	// The response cache fronts only the catalog: those payloads are the same
	// for every caller.  Auth and order responses are per-user and are never
	// cached.
	router.RegisterCatalog(e, catalog, cfg.JWTSecret,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterOrders(e, orderH, cfg.JWTSecret)

	// Background consumer that appends confirmed orders to logs/orders.log.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/hemensatbana/marketplace-api/internal/config"
	"github.com/hemensatbana/marketplace-api/internal/database"
	"github.com/hemensatbana/marketplace-api/internal/handler"
	"github.com/hemensatbana/marketplace-api/internal/middleware"
	"github.com/hemensatbana/marketplace-api/internal/queue"
	"github.com/hemensatbana/marketplace-api/internal/repository"
	"github.com/hemensatbana/marketplace-api/internal/router"
	"github.com/hemensatbana/marketplace-api/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: cache and rate limiting pass requests through
	// untouched when the client is nil.
	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	listings := repository.NewListingRepo(db)
	messages := repository.NewMessageRepo(db)
	favorites := repository.NewFavoriteRepo(db)
	stats := repository.NewStatsRepo(db)

	events := service.NewQueuePublisher()

	authH := handler.NewAuthHandler(cfg, users, tokens)
	userH := handler.NewUserHandler(users, stats)
	listingH := handler.NewListingHandler(listings, messages, favorites)
	messageH := handler.NewMessageHandler(messages, listings, events)
	favoriteH := handler.NewFavoriteHandler(favorites, listings)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.TokenBucket(rlCfg, rdb))

	cache := middleware.ResponseCache(cacheCfg, rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterUsers(e, userH, cfg.JWTSecret)
	router.RegisterListings(e, listingH, cfg.JWTSecret, cache)
	router.RegisterMessages(e, messageH, cfg.JWTSecret)
	router.RegisterFavorites(e, favoriteH, cfg.JWTSecret)

	// Background consumer writes inquiry notifications to the log sink.
	go func() {
		if err := queue.StartMessageConsumer(); err != nil {
			log.Printf("message consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

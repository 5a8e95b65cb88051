package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"omezka-shop-api/internal/cache"
	"omezka-shop-api/internal/config"
	"omezka-shop-api/internal/handler"
	"omezka-shop-api/internal/middleware"
	"omezka-shop-api/internal/repository"
	"omezka-shop-api/internal/router"
	"omezka-shop-api/internal/service"
	"omezka-shop-api/internal/ws"

	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Omezka shop API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize game store based on config
	var store repository.Store
	var err error
	switch cfg.GameDB.Type {
	case "postgres", "postgresql":
		store, err = repository.NewPostgresStore(cfg.GameDB.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL: %v", err)
		}
		log.Println("PostgreSQL game store initialized")
	case "mysql":
		store, err = repository.NewMySQLStore(cfg.GameDB.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to initialize MySQL: %v", err)
		}
		log.Println("MySQL game store initialized")
	default: // sqlite
		store, err = repository.NewSQLiteStore(cfg.GameDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		log.Println("SQLite game store initialized")
	}
	defer store.Close()

	// Seed/refresh the catalog from the products file
	syncCtx, syncCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := service.SyncCatalogFromFile(syncCtx, store, cfg.Shop.ProductsFile); err != nil {
		log.Printf("Warning: catalog sync failed: %v", err)
	}
	syncCancel()

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddress(),
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed: %v", err)
		redisClient = nil
	} else {
		log.Println("Redis client initialized")
	}
	pingCancel()

	// Websocket fan-out hub
	hub := ws.NewHub()

	// Shop cache and notifier. With Redis, updates flow through pub/sub so
	// every process pushes the same payloads; without it the snapshot lives
	// in memory and the hub broadcasts locally.
	var shopCache cache.ShopCache
	var notifier cache.Notifier
	bridgeCtx, bridgeCancel := context.WithCancel(context.Background())
	defer bridgeCancel()

	if redisClient != nil {
		redisCache := cache.NewRedisShopCache(redisClient, cfg.Shop.KeyPrefix)
		shopCache = redisCache
		notifier = redisCache
		go hub.RunBridge(bridgeCtx, redisCache.Subscribe(bridgeCtx))
	} else {
		log.Println("Warning: falling back to in-memory shop cache")
		shopCache = cache.NewMemoryShopCache()
		notifier = hub
	}

	// Sessions require Redis; without it login is disabled
	var sessions *service.SessionService
	if redisClient != nil {
		sessions = service.NewSessionService(redisClient)
	} else {
		log.Println("Warning: sessions disabled (no Redis)")
	}

	// Background workers
	engine := service.NewRotationEngine(store)
	scheduler := service.NewRotationScheduler(engine, shopCache, notifier, service.SchedulerConfig{
		MinInterval: cfg.Shop.MinRotationInterval,
		MaxInterval: cfg.Shop.MaxRotationInterval,
	})
	scheduler.Start()

	sweeper := service.NewAuctionSweeper(store, service.AuctionSweeperConfig{
		SweepInterval: cfg.Auction.SweepInterval,
	})
	sweeper.Start()

	// Services and handlers
	shopService := service.NewShopService(store, shopCache, notifier)

	healthHandler := handler.New(cfg.App.Version)
	shopHandler := handler.NewShopHandler(shopService)
	auctionHandler := handler.NewAuctionHandler(store)
	adminHandler := handler.NewAdminHandler(store, scheduler)

	var authHandler *handler.AuthHandler
	var sessionAuth func(http.Handler) http.Handler
	if sessions != nil {
		authHandler = handler.NewAuthHandler(sessions, store)
		sessionAuth = middleware.NewSessionAuth(middleware.AuthConfig{Sessions: sessions})
	} else {
		sessionAuth = middleware.NewSessionAuth(middleware.AuthConfig{})
	}

	r := router.New(router.Config{
		Handler:        healthHandler,
		ShopHandler:    shopHandler,
		AuthHandler:    authHandler,
		AuctionHandler: auctionHandler,
		AdminHandler:   adminHandler,
		Hub:            hub,
		SessionAuth:    sessionAuth,
		AdminAuth:      middleware.NewAdminKeyAuth(cfg.App.LoginKey),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	scheduler.Stop()
	sweeper.Stop()
	bridgeCancel()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}

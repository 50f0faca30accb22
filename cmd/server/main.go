package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/game-ticket-booking/internal/config"
	"github.com/iliyamo/game-ticket-booking/internal/database"
	"github.com/iliyamo/game-ticket-booking/internal/handler"
	"github.com/iliyamo/game-ticket-booking/internal/queue"
	"github.com/iliyamo/game-ticket-booking/internal/repository"
	"github.com/iliyamo/game-ticket-booking/internal/router"
	"github.com/iliyamo/game-ticket-booking/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("db: ensure schema: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	store := service.NewSQLStore(repository.NewGameRepo(db), repository.NewPurchaseRepo(db), repository.NewUserRepo(db))
	opts := []service.Option{service.WithMaxTicketsPerPurchase(cfg.Booking.MaxTicketsPerPurchase)}
	if cfg.Queue.Enabled {
		pub := queue.NewPublisher(cfg.Queue.URL)
		pub.DialTimeout = cfg.Queue.DialTimeout
		opts = append(opts, service.WithNotifier(pub))
	}
	booking := service.NewBookingService(store, opts...)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.ContextTimeout(cfg.Booking.RequestTimeout))
	router.RegisterRoutes(e, router.Deps{
		Config:    cfg,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Redis:     rdb,
		DB:        db,
		Public:    handler.NewPublicHandler(booking),
		Customer:  handler.NewCustomerHandler(booking),
		Auth:      handler.NewAuthHandler(cfg, booking),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Queue.Enabled && cfg.Queue.ConsumerEnabled {
		consumer := queue.NewConsumer(cfg.Queue.URL)
		consumer.LogPath = cfg.Queue.LogPath
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("booking-consumer: stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s, redis=%t)", addr, cfg.Env, rdb != nil)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server: shutdown: %v", err)
	}
}

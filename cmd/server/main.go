package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/guest-suite-booking/internal/config"
	"github.com/iliyamo/guest-suite-booking/internal/database"
	"github.com/iliyamo/guest-suite-booking/internal/handler"
	"github.com/iliyamo/guest-suite-booking/internal/mail"
	"github.com/iliyamo/guest-suite-booking/internal/middleware"
	"github.com/iliyamo/guest-suite-booking/internal/queue"
	"github.com/iliyamo/guest-suite-booking/internal/repository"
	"github.com/iliyamo/guest-suite-booking/internal/router"
	"github.com/iliyamo/guest-suite-booking/internal/service"
	"github.com/iliyamo/guest-suite-booking/internal/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()
	limits := config.LoadRulesConfig()
	logger := utils.NewLogger("guest-suite", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Record store ----
	var store repository.Store
	switch cfg.StoreDriver {
	case config.StoreMySQL:
		db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		defer db.Close()
		if err := repository.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("db schema: %v", err)
		}
		store = repository.NewMySQLStore(db)
	default:
		logger.Warn("using in-memory store; data is lost on restart")
		store = repository.NewMemoryStore()
	}

	// ---- Redis: rate limit + response cache ----
	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		logger.Warn("redis unavailable; rate limiting and caching disabled", "err", err)
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	// ---- Booking events ----
	publisher := queue.NewPublisher(cfg.AMQPURL, cfg.BookingQueue, logger)
	if cfg.AMQPURL != "" {
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.BookingQueue, cfg.BookingLogPath, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("booking log consumer stopped", "err", err)
			}
		}()
	}

	svc := service.New(service.Options{
		Store:         store,
		Limits:        limits,
		Location:      cfg.Location,
		Logger:        logger,
		Events:        publisher,
		Cache:         middleware.NewCacheInvalidator(cacheCfg, rdb),
		Mail:          mail.NewComposer(cfg.AdminEmail, cfg.PublicBaseURL),
		TokenSecret:   cfg.JWTSecret,
		CheckTokenTTL: time.Duration(cfg.CheckTokenTTLMin) * time.Minute,
	})

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg),
		Booking:  handler.NewBookingHandler(svc.Booking),
		Calendar: handler.NewCalendarHandler(svc.Specials, cfg.Location),
		Members:  handler.NewMemberHandler(svc.Members),
		Admin:    handler.NewAdminHandler(svc.Admin),
	}, router.Middleware{
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger),
		Cache:     middleware.NewRedisCache(cacheCfg, rdb),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}

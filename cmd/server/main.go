package main // Entry point package

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
	echoMw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/event-seat-booking/internal/config"
	"github.com/iliyamo/event-seat-booking/internal/database"
	"github.com/iliyamo/event-seat-booking/internal/handler"
	"github.com/iliyamo/event-seat-booking/internal/middleware"
	"github.com/iliyamo/event-seat-booking/internal/queue"
	"github.com/iliyamo/event-seat-booking/internal/repository"
	"github.com/iliyamo/event-seat-booking/internal/router"
	"github.com/iliyamo/event-seat-booking/internal/service"
	"github.com/iliyamo/event-seat-booking/internal/weather"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, dialect, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db, dialect); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	// nil when Redis is down: cache off, rate limiting local
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}

	// connects in the background; events are dropped while the broker is down
	pub := queue.NewPublisher(cfg.AMQPURL)
	defer pub.Close()

	go func() {
		if err := queue.StartReservationConsumer(ctx, cfg.AMQPURL, "logs"); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	users := repository.NewUserRepo(db, dialect)
	tokens := repository.NewTokenRepo(db, dialect)
	events := repository.NewEventRepo(db, dialect)
	seats := repository.NewSeatRepo(db, dialect)
	reservations := repository.NewReservationRepo(db, dialect)

	svc := service.NewReservationService(seats, pub, cfg.StoreTimeout)

	cacheCfg := config.LoadCacheConfig()
	invalidate := handler.CacheInvalidator(func(ctx context.Context) error {
		return middleware.InvalidateCache(ctx, rdb, cacheCfg.Prefix)
	})
	cache := middleware.NewRedisCache(cacheCfg, rdb)
	weatherCache := middleware.NewRedisCache(cacheCfg.WithTTL(cacheCfg.WeatherTTL), rdb)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())
	e.Use(echoMw.CORSWithConfig(echoMw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterEvents(e, handler.NewEventHandler(events, invalidate), cfg.JWTSecret, cache)
	router.RegisterSeats(e,
		handler.NewSeatHandler(seats, svc, invalidate),
		handler.NewReservationHandler(reservations),
		cfg.JWTSecret, limit)
	router.RegisterWeather(e, handler.NewWeatherHandler(weather.NewClient(cfg.WeatherBaseURL, cfg.WeatherAPIKey)), weatherCache)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, dialect.Name())
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

package main // Entry point package

import (
    "context"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/hibiken/asynq"
    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/iliyamo/library-seat-reservation/internal/config"
    "github.com/iliyamo/library-seat-reservation/internal/database"
    "github.com/iliyamo/library-seat-reservation/internal/handler"
    "github.com/iliyamo/library-seat-reservation/internal/middleware"
    "github.com/iliyamo/library-seat-reservation/internal/queue"
    "github.com/iliyamo/library-seat-reservation/internal/repository"
    "github.com/iliyamo/library-seat-reservation/internal/router"
    "github.com/iliyamo/library-seat-reservation/internal/service"
    "github.com/iliyamo/library-seat-reservation/internal/worker"
)

func main() {
    _ = godotenv.Load() // .env is optional; real env vars win
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis backs rate limiting, response caching and the durable
    // deadline queue.  Middleware degrades gracefully when the client
    // is nil; the deadline queue does not, so its address is read
    // directly.
    rdb := config.NewRedisClient()
    redisAddr := os.Getenv("REDIS_ADDR")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        redisAddr = host + ":" + port
    }
    if redisAddr == "" {
        redisAddr = "localhost:6379"
    }
    redisOpt := asynq.RedisClientOpt{Addr: redisAddr, Password: os.Getenv("REDIS_PASSWORD")}

    seats := repository.NewSeatRepo(db)
    bookings := repository.NewBookingRepo(db)
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)

    deadlines := worker.NewDeadlines(redisOpt)
    defer deadlines.Close()

    svc := service.NewBookingService(seats, bookings, users, users, deadlines, queue.NewPublisher(), service.Policy{
        Deadline:     time.Duration(cfg.DeadlineMin) * time.Minute,
        SingleActive: cfg.SingleActive,
        VenueLat:     cfg.VenueLatitude,
        VenueLon:     cfg.VenueLongitude,
        RadiusMeters: cfg.RadiusMeters,
    })

    // Rebuild auto-cancel wake-ups lost to a restart before serving
    // traffic, then run the task server in the background.
    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    if err := svc.RecoverDeadlines(ctx); err != nil {
        log.Printf("recover deadlines: %v", err)
    }
    cancel()
    go func() {
        if err := worker.Run(redisOpt, svc); err != nil {
            log.Fatalf("deadline worker: %v", err)
        }
    }()

    // The consumer appends booking lifecycle events to logs/booking.log
    // and reconnects on broker outages.
    go func() {
        if err := queue.StartBookingConsumer(); err != nil {
            log.Printf("booking consumer stopped: %v", err)
        }
    }()

    e := echo.New()
    e.Use(echomw.Recover())
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

    router.RegisterRoutes(e)
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
    router.RegisterSeats(e, handler.NewSeatHandler(svc, seats), cfg.JWTSecret)
    router.RegisterBookings(e, handler.NewBookingHandler(svc), cfg.JWTSecret)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    go func() {
        if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
            log.Fatalf("server: %v", err)
        }
    }()

    quit := make(chan os.Signal, 1)
    signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
    <-quit

    shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer shutdownCancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        log.Fatalf("shutdown: %v", err)
    }
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"venue-booking-backend/config"
	"venue-booking-backend/internal/api"
	"venue-booking-backend/internal/availability"
	"venue-booking-backend/internal/booking"
	"venue-booking-backend/internal/db"
	"venue-booking-backend/internal/locker"
	"venue-booking-backend/internal/mw"
	"venue-booking-backend/internal/schedule"
	"venue-booking-backend/internal/store"
)

func main() {
	// A missing .env is fine; the process environment still applies.
	envErr := godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("failed to load .env file", zap.Error(envErr))
	}
	logger.Info("configuration loaded",
		zap.String("path", configPath),
		zap.String("venue", cfg.Venue.Name),
		zap.String("timezone", cfg.Venue.Location.String()),
	)

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lock, closeLock, err := newLocker(ctx, cfg.Lock)
	if err != nil {
		logger.Fatal("failed to initialize lock backend", zap.String("backend", cfg.Lock.Backend), zap.Error(err))
	}
	defer closeLock()
	logger.Info("lock backend ready", zap.String("backend", cfg.Lock.Backend))

	appStore := store.NewGormStore(gormDB)
	acquirer := locker.NewAcquirer(lock, cfg.Lock.TTL, cfg.Lock.WaitTimeout, logger.Named("locker"))
	loc := cfg.Venue.Location

	handler := api.NewHandler(
		appStore,
		booking.NewService(appStore, acquirer, cfg.Rules, loc, logger.Named("booking")),
		availability.NewCalculator(appStore, cfg.Rules, loc, logger.Named("availability")),
		schedule.NewService(appStore, loc, logger.Named("schedule")),
		mw.NewResponseCache(cfg.Server.CacheTTL),
		cfg,
		logger.Named("api"),
	)
	router := api.NewRouter(handler, cfg.Server, logger.Named("http"))
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server Shutdown", zap.Error(err))
	}

	logger.Info("server gracefully stopped")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	return zc.Build()
}

// newLocker returns the configured lock backend and a function closing it.
func newLocker(ctx context.Context, cfg config.LockConfig) (locker.Locker, func(), error) {
	if cfg.Backend != "redis" {
		return locker.NewMemory(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}
	return locker.NewRedis(client), func() { client.Close() }, nil
}

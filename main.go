package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"nbcontents/config"
	"nbcontents/config/database"
	contentsHandler "nbcontents/internal/contents"
	"nbcontents/internal/contents/repository"
	"nbcontents/internal/contents/service"
	"nbcontents/pkg/logger"
	"nbcontents/router"
	"nbcontents/socket"
	"nbcontents/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables from OS")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connector, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Sugar.Fatalf("Failed to open %s storage: %v", cfg.StorageBackend, err)
	}
	defer closeStore()

	policy, err := service.ParseMissingPolicy(cfg.OnMissing)
	if err != nil {
		logger.Sugar.Fatal(err)
	}

	hub := socket.NewHub()
	go hub.Run()

	repo := repository.NewContentsRepository(connector)
	svc := service.NewContentsService(repo, policy, hub)
	handler := contentsHandler.NewContentsHandler(svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.Setup(handler, hub, cfg.CORSOrigin),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Sugar.Infof("Contents server listening on %s (storage=%s, on_missing=%s)", cfg.Addr, cfg.StorageBackend, cfg.OnMissing)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar.Errorf("Graceful shutdown failed: %v", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Connector, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		db, err := database.Connect(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPostgresStore(db, cfg.Namespace)
		if err := pg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return pg, closer(db), nil

	case config.BackendRedis:
		client, err := store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisStore(client, cfg.Namespace), closerRedis(client), nil
	}

	return store.NewMemoryStore(cfg.Namespace), func() {}, nil
}

func closer(db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Sugar.Errorf("Closing database: %v", err)
		}
	}
}

func closerRedis(client *redis.Client) func() {
	return func() {
		if err := client.Close(); err != nil {
			logger.Sugar.Errorf("Closing redis: %v", err)
		}
	}
}

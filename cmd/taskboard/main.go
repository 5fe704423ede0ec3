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
	"github.com/monocle-dev/taskboard/db"
	"github.com/monocle-dev/taskboard/internal/auth"
	"github.com/monocle-dev/taskboard/internal/config"
	"github.com/monocle-dev/taskboard/internal/realtime"
	"github.com/monocle-dev/taskboard/internal/router"
	"github.com/monocle-dev/taskboard/internal/scheduler"
	"github.com/monocle-dev/taskboard/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	schema := db.DefaultSchema()

	conn, err := db.Connect(cfg.Database.Driver, cfg.Database.DSN, schema)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Migrate(conn, schema); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	tokens, err := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	jobs := scheduler.NewScheduler()

	if cfg.Auth.RevokeOnLogout {
		revocations := store.NewRevocationStore(conn)
		jobs.Add("purge-revocations", time.Hour, func(ctx context.Context) error {
			n, err := revocations.Purge(ctx, time.Now())
			if n > 0 {
				log.Printf("Purged %d expired token revocations", n)
			}
			return err
		})
	}

	r := router.NewRouter(router.Deps{
		DB:     conn,
		Tokens: tokens,
		Hasher: auth.BcryptHasher{Cost: auth.DefaultCost},
		Config: cfg,
		Hub:    realtime.NewHub(),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	jobs.Stop()

	if sqlDB, err := conn.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("close db: %v", err)
		}
	}
}

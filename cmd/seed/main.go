package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/monocle-dev/taskboard/db"
	"github.com/monocle-dev/taskboard/internal/auth"
	"github.com/monocle-dev/taskboard/internal/config"
	"github.com/monocle-dev/taskboard/internal/store"
)

func main() {
	name := flag.String("name", "Admin User", "admin display name")
	email := flag.String("email", "admin@example.com", "admin email")
	password := flag.String("password", "admin123", "admin password")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg, err := config.LoadWithDefaults()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

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

	svc := auth.NewService(store.NewUserStore(conn), auth.BcryptHasher{Cost: auth.DefaultCost}, tokens, nil)

	created, err := svc.EnsureAdmin(context.Background(), *name, *email, *password)
	if err != nil {
		log.Fatalf("Error seeding admin: %v", err)
	}

	if !created {
		log.Println("Admin user already exists")
		return
	}

	log.Printf("Admin user created successfully (email: %s)", *email)
}

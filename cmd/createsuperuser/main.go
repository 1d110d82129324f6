package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hugh/recipe-api/internal/auth"
	"github.com/hugh/recipe-api/internal/database"
	"github.com/hugh/recipe-api/pkg/config"
	"github.com/hugh/recipe-api/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "superuser email (ADMIN_EMAIL)")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "superuser password (ADMIN_PASSWORD)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close(db)

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService)

	user, err := authService.CreateAdminAccount(ctx, *email, *password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			fmt.Printf("Superuser already exists: %s\n", *email)
			return
		}
		log.Fatalf("failed to create superuser: %v", err)
	}

	fmt.Printf("Superuser created successfully!\n")
	fmt.Printf("Email: %s\n", user.Email)
}

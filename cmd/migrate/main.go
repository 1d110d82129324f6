package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hugh/recipe-api/internal/database"
	"github.com/hugh/recipe-api/pkg/config"
	"github.com/hugh/recipe-api/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [up|status]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	ctx := context.Background()

	switch command {
	case "up":
		err = database.Migrate(ctx, db)
	case "status":
		err = database.MigrationStatus(ctx, db)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("migration failed", "command", command, "error", err)
		os.Exit(1)
	}

	logger.Info("migration finished", "command", command)
}

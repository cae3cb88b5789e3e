package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bynikesh/findmyai-sub001/internal/config"
	"github.com/bynikesh/findmyai-sub001/internal/database"
	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/bynikesh/findmyai-sub001/internal/seed"
)

func main() {
	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	var run func(*seed.Seeder, context.Context) error
	switch command {
	case "dev":
		run = (*seed.Seeder).SeedDev
	case "test":
		run = (*seed.Seeder).SeedTest
	case "clean":
		run = (*seed.Seeder).Clean
	default:
		fmt.Println("Usage: seed [dev|test|clean]")
		fmt.Println("  dev   - Seed development database with a realistic catalog")
		fmt.Println("  test  - Seed test database with fixed users and tools")
		fmt.Println("  clean - Remove all catalog and user data (use with caution)")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Log.Level, "-"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	if err := database.Initialize(cfg); err != nil {
		logger.FatalWithFields("Failed to connect to database", err)
	}
	defer database.Close()
	if err := database.Migrate(); err != nil {
		logger.FatalWithFields("Migration failed", err)
	}

	logger.Log.Info("Running seed command: " + command)
	if err := run(seed.NewSeeder(database.DB), context.Background()); err != nil {
		logger.FatalWithFields("Seeding failed", err)
	}
	logger.Log.Info("Seed command finished: " + command)
}

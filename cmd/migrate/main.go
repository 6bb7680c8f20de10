package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
)

const usage = "migration command: up|down|status|redo|reset|version|create|validate"

func main() {
	os.Exit(run())
}

func run() int {
	cmd := flag.String("cmd", "up", usage)
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name (for -cmd=create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	// create and validate only touch the filesystem and need no config.
	switch *cmd {
	case "create":
		if *name == "" {
			fmt.Fprintln(os.Stderr, "missing -name for create")
			return 2
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create migration: %v\n", err)
			return 1
		}
		fmt.Println("created migration:", path)
		return 0
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			fmt.Fprintf(os.Stderr, "migration validation failed: %v\n", err)
			return 1
		}
		fmt.Println("migration validation passed")
		return 0
	case "version":
		if _, err := migrate.ParseVersion(*version); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	case "up", "down", "status", "redo", "reset":
	default:
		fmt.Fprintf(os.Stderr, "unknown -cmd %q (%s)\n", *cmd, usage)
		return 2
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	if cfg.FeatureFlags.UseSQLite {
		fmt.Fprintln(os.Stderr, "goose migrations target postgres; the sqlite driver is auto-migrated from the models")
		return 1
	}

	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.ConsoleLogs(),
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(ctx, "migrate.db_unavailable", err)
		return 1
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		logg.Error(ctx, "migrate.db_unavailable", err)
		return 1
	}

	runner, err := migrate.NewRunner(sqlDB, *dir, logg)
	if err != nil {
		logg.Error(ctx, "migrate.failed", err)
		return 1
	}
	if *cmd == "version" {
		err = runner.ToVersion(ctx, *version)
	} else {
		err = runner.Run(ctx, *cmd)
	}
	if err != nil {
		logg.Error(ctx, "migrate.failed", err)
		return 1
	}
	logg.Info(ctx, "migrate.done")
	return 0
}

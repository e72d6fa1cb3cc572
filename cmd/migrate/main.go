package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/threadkart/threadkart-backend/pkg/config"
	"github.com/threadkart/threadkart-backend/pkg/db"
	"github.com/threadkart/threadkart-backend/pkg/logger"
	"github.com/threadkart/threadkart-backend/pkg/migrate"
)

func main() {
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name (for -cmd=create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	cfg, err := config.Load()
	if err != nil {
		fatal(ctx, logg, "load config", err)
	}

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})

	// create and validate work on the filesystem only.
	switch *cmd {
	case "create":
		if *name == "" {
			fatal(ctx, logg, "create", fmt.Errorf("missing -name"))
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			fatal(ctx, logg, "create migration", err)
		}
		fmt.Println("created migration:", path)
		return

	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			fatal(ctx, logg, "validate migrations", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		fatal(ctx, logg, "connect database", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		fatal(ctx, logg, "unwrap sql.DB", err)
	}

	switch *cmd {
	case "up", "down", "status":
		if err := migrate.Run(ctx, sqlDB, *dir, *cmd); err != nil {
			fatal(ctx, logg, "goose "+*cmd, err)
		}

	case "version":
		if *version == "" {
			fatal(ctx, logg, "version", fmt.Errorf("missing -version"))
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, *dir, *version); err != nil {
			fatal(ctx, logg, "goose migrate to version", err)
		}

	default:
		fatal(ctx, logg, "parse flags", fmt.Errorf("unknown -cmd value %q", *cmd))
	}
}

func fatal(ctx context.Context, logg *logger.Logger, step string, err error) {
	logg.Error(ctx, "migrate failed: "+step, err)
	os.Exit(1)
}

// Command migrate applies or reverts the embedded schema migrations.
//
//	go run ./cmd/migrate          # apply pending migrations
//	go run ./cmd/migrate down     # revert the latest migration
//	go run ./cmd/migrate version  # print the applied version
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"jobtracker-backend/internal/shared/config"
	"jobtracker-backend/internal/shared/storage/db"
	"jobtracker-backend/internal/shared/telemetry"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	command := "up"
	if len(args) > 0 {
		command = args[0]
	}
	switch command {
	case "up":
		err = db.RunMigrations(ctx, sqlDB)
	case "down":
		err = db.RollbackMigration(ctx, sqlDB)
	case "version":
	default:
		return fmt.Errorf("unknown command %q (want up, down or version)", command)
	}
	if err != nil {
		return err
	}

	version, err := db.MigrationVersion(ctx, sqlDB)
	if err != nil {
		return err
	}
	telemetry.Info("migrate.done", map[string]any{"command": command, "version": version})
	return nil
}

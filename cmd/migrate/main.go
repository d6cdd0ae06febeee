package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"procedure-backend/internal/shared/config"
	"procedure-backend/internal/shared/storage/db"
	"procedure-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFor(db.ProfileMigrate))
	if err != nil {
		telemetry.Error("migrate.connect.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", nil)
}

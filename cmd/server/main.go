package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"doorstep-clean/internal/app"
	"doorstep-clean/internal/config"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// Missing .env is fine in deployed environments; config falls back to
	// the process environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to start application", "error", err)
		os.Exit(1)
	}
	if err := a.Run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

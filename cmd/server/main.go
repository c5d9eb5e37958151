package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mmynk/studytracker/internal/auth"
	"github.com/mmynk/studytracker/internal/config"
	"github.com/mmynk/studytracker/internal/middleware"
	"github.com/mmynk/studytracker/internal/server"
	"github.com/mmynk/studytracker/internal/storage/sqlite"
	"github.com/mmynk/studytracker/pkg/logging"
)

func main() {
	// A missing .env is fine; the real environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel)
	slog.Info("Configuration loaded", "config", cfg.String())

	if err := run(cfg); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	authenticator := auth.NewPasswordAuthenticator(store, cfg.DefaultAdminUsername, cfg.BcryptCost)
	if _, err := authenticator.EnsureDefaultAdmin(ctx, cfg.DefaultAdminPassword); err != nil {
		return err
	}

	handler := server.NewRouter(cfg, server.Dependencies{
		Store:         store,
		Authenticator: authenticator,
		JWT:           auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiresIn),
		Metrics:       middleware.NewMetrics(),
		Logger:        slog.Default(),
	})

	return server.New(cfg.ServerAddr(), handler, cfg.ShutdownTimeout).Run(ctx)
}

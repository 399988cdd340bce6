package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Facumerino03/Finquik-back/internal/config"
	"github.com/Facumerino03/Finquik-back/internal/database"
	"github.com/Facumerino03/Finquik-back/internal/router"

	"github.com/joho/godotenv"
)

func main() {
	// optional .env for local overrides
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Error("init database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("migrate database", "error", err)
		os.Exit(1)
	}

	r := router.SetupRouter(cfg, db, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	logger.Info("server listening", "addr", addr)
	if err := r.Run(addr); err != nil {
		logger.Error("run server", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

package main

import (
	"context"

	"agora/internal/config"
	"agora/internal/db"
	"agora/internal/logging"
	"agora/internal/seed"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	if !cfg.DotEnvLoaded {
		log.Info("No .env file found, reading config from environment")
	}

	conn, err := db.Open(cfg.DBDriver, cfg.DatabaseURL, db.Options{
		Logger: logging.NewGormLogger(log),
	})
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}

	if _, err := seed.New(conn, log).Run(context.Background()); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
}

// Command migrate applies the embedded schema migrations to the configured
// database.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"notehub.org/internal/config"
	"notehub.org/internal/migrate"
	"notehub.org/internal/obs"
)

func main() {
	cfg := config.Load()
	dsn := flag.String("dsn", cfg.PostgresDSN, "PostgreSQL DSN")
	flag.Parse()

	logger, err := obs.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	obs.Init()

	if *dsn == "" {
		logger.Fatal("missing dsn (--dsn or " + config.EnvPostgresDSN + ")")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, *dsn); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}
	logger.Info("migrations applied")
}

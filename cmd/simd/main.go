package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/virtualtd/league-engine/internal/config"
	"github.com/virtualtd/league-engine/internal/logging"
	"github.com/virtualtd/league-engine/internal/server"
)

const appVersion = "dev"

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error(logging.NewLogger(logging.Config{}), "invalid configuration", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "league-engine",
		Version: appVersion,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, logger)
	srv.Run(ctx, stop)
}

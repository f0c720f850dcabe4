// Command server runs the Kollabary marketplace API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kollabary/backend/internal/config"
	"github.com/kollabary/backend/internal/logging"
	"github.com/kollabary/backend/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.LogLevel, logFormat(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}
	return srv.Run(ctx)
}

func logFormat(cfg *config.Config) string {
	if cfg.IsDevelopment() {
		return "text"
	}
	return "json"
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schemes-portal/schemes_portal/internal/config"
	"github.com/schemes-portal/schemes_portal/internal/infra"
	"github.com/schemes-portal/schemes_portal/internal/logging"
	"github.com/schemes-portal/schemes_portal/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	res, err := infra.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("open stores", "backend", cfg.DataBackend, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("close stores", "error", err)
		}
	}()

	if cfg.SessionSecret == "" {
		logger.Warn("SESSION_SECRET not set; using a random secret, sessions end on restart")
	}

	srv, err := server.New(cfg, res, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}

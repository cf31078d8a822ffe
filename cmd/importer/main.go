package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schemes-portal/schemes_portal/internal/config"
	"github.com/schemes-portal/schemes_portal/internal/importcli"
	"github.com/schemes-portal/schemes_portal/internal/logging"
)

func main() {
	opts, err := importcli.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "importer: %v\n", err)
		os.Exit(2)
	}

	if err := opts.Export(); err != nil {
		fmt.Fprintf(os.Stderr, "importer: %v\n", err)
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Component(logging.New(cfg.LogLevel), "importer")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := importcli.Run(ctx, cfg, opts, logger)
	if err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("categories=%d imported=%d skipped=%d\n", res.Categories, res.Imported, res.Skipped)
}

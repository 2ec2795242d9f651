// Package main provides a tool to import a legacy catalog export into the
// PageTrail book catalog without starting the server.
//
// It accepts the same flags and environment as the server. The catalog to
// import is taken from -catalog-seed-file (or CATALOG_SEED_FILE).
//
// Usage:
//
//	go run ./cmd/seed -catalog-seed-file ~/exports/books.json
//	DATA_PATH=~/PageTrail/data go run ./cmd/seed -catalog-seed-file books.json -store-driver badger
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/listenupapp/pagetrail-server/internal/config"
	"github.com/listenupapp/pagetrail-server/internal/di/providers"
	"github.com/listenupapp/pagetrail-server/internal/logger"
	"github.com/listenupapp/pagetrail-server/internal/search"
	"github.com/listenupapp/pagetrail-server/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.Catalog.SeedFile == "" {
		return fmt.Errorf("no catalog given: pass -catalog-seed-file or set CATALOG_SEED_FILE")
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
		Writer:      os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := providers.OpenStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	index, err := search.NewBookIndex(search.Options{DataPath: cfg.Store.DataPath, Logger: log.Logger})
	if err != nil {
		return err
	}
	defer index.Close()

	catalogService := service.NewCatalogService(st, index, log.Logger)
	report, err := catalogService.ImportCatalogFile(ctx, cfg.Catalog.SeedFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

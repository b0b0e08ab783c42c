package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	corecfg "github.com/saleslens-lab/saleslens/internal/core/config"
	"github.com/saleslens-lab/saleslens/internal/core/storage/postgres"
	"github.com/saleslens-lab/saleslens/internal/ingestion"
	"github.com/saleslens-lab/saleslens/internal/migrations"
	"github.com/saleslens-lab/saleslens/internal/reporting"
	"github.com/saleslens-lab/saleslens/internal/server"
)

func main() {
	configPath := flag.String("config", "saleslens.yaml", "Path to configuration file")
	importPath := flag.String("import", "", "Bulk-load a ledger export (.csv or .xlsx) and exit")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// 3. Bulk import mode: load the file and exit.
	if *importPath != "" {
		summary, err := ingestion.LoadFile(context.Background(), dbAdapter, *importPath)
		if err != nil {
			slog.Error("Import failed", "path", *importPath, "error", err)
			os.Exit(1)
		}
		slog.Info("Import finished",
			"path", *importPath,
			"loaded", summary.Loaded,
			"duplicates", summary.Duplicates,
			"skipped", summary.Skipped)
		return
	}

	// 4. Initialize Ingestion (write path)
	ingestionSvc := ingestion.NewService(dbAdapter, cfg.Server.MaxBodySizeMB)

	// 5. Initialize Reporting (query API)
	reportingSvc := reporting.NewService(
		dbAdapter,
		cfg.ReportLoading.Repo,
		cfg.Analytics.QueryBatchSize,
		cfg.Analytics.WorkerCount,
	)

	slog.Info("Reporting service initialized",
		"reports", len(cfg.ReportLoading.Specs),
		"worker_count", cfg.Analytics.WorkerCount,
		"query_batch_size", cfg.Analytics.QueryBatchSize,
	)

	// 6. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter.DB(), cfg.Server.Mode)
	ingestionSvc.RegisterRoutes(srv.Engine)
	reportingSvc.RegisterRoutes(srv.Engine)

	// 7. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler -> triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"letterboxd-sync/config"
	"letterboxd-sync/scraper/letterboxd"
	"letterboxd-sync/services"
	"letterboxd-sync/storage"
	"letterboxd-sync/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(utils.ParseLevel(cfg.LogLevel))

	if err := run(cfg, logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *utils.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Letterboxd sync starting ===")
	logger.Info("Config: feed %s | mode %s | dataset %s | bootstrap %q",
		cfg.FeedURL, cfg.FetchMode, cfg.DatasetPath, cfg.BootstrapPath)

	fetcher, err := letterboxd.New(cfg, logger)
	if err != nil {
		return err
	}

	csvWriter, err := storage.NewCSVWriter(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("create CSV writer: %w", err)
	}
	defer csvWriter.Close()

	var (
		mirrors  []storage.DatasetWriter
		pgWriter *storage.PostgresWriter
	)
	if cfg.PostgresEnabled {
		pgWriter, err = storage.NewPostgresWriter(ctx, cfg.DSN(), logger)
		if err != nil {
			return fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		defer pgWriter.Close()
		mirrors = append(mirrors, pgWriter)
	}

	normalizer := services.NewNormalizer(logger)
	loader := services.NewLoader(storage.CSVReader{}, normalizer, logger, cfg.DatasetPath, cfg.BootstrapPath)
	syncer := services.NewSyncer(loader, fetcher, normalizer, services.NewMerger(logger), csvWriter, logger, mirrors...)

	result, err := syncer.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Println(result.Summary())

	if cfg.ReportEnabled {
		records := result.Records
		if pgWriter != nil {
			if dbRecords, err := pgWriter.FetchAll(); err != nil {
				logger.Warn("Failed to read mirror for report, using merged dataset: %v", err)
			} else {
				records = dbRecords
			}
		}
		insights := services.NewInsightService(logger)
		insights.Print(os.Stdout, insights.Generate(records))
	}

	logger.Info("Dataset saved to %s", cfg.DatasetPath)
	return nil
}

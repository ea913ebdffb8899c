// Package main imports OHLCV bars from CSV files into the bar store.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"alpha-search-lab/internal/logging"
	"alpha-search-lab/internal/marketdata"
	chstore "alpha-search-lab/internal/storage/clickhouse"
	"alpha-search-lab/internal/storage/migrations"
)

func main() {
	// Parse flags
	csvPath := flag.String("csv", "", "CSV file with bars (required)")
	symbol := flag.String("symbol", "", "Instrument symbol (required)")
	interval := flag.String("interval", "1d", "Bar interval label")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (required)")
	migrate := flag.Bool("migrate", false, "Run migrations before importing")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	pretty := flag.Bool("pretty", false, "Pretty console log output")
	flag.Parse()

	logger := logging.New(logging.Config{Level: *logLevel, Pretty: *pretty})
	logging.SetGlobalLogger(logger)

	if *csvPath == "" {
		logger.Fatal().Msg("--csv is required")
	}
	if *symbol == "" {
		logger.Fatal().Msg("--symbol is required")
	}
	if *clickhouseDSN == "" {
		logger.Fatal().Msg("--clickhouse-dsn is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("cancelling import")
		cancel()
	}()

	series, err := marketdata.LoadCSV(*csvPath, *symbol, *interval)
	if err != nil {
		logger.Fatal().Err(err).Msg("load csv")
	}
	logger.Info().
		Str("symbol", series.Symbol).
		Str("interval", series.Interval).
		Int("bars", series.Len()).
		Msg("series parsed")

	conn, err := chstore.NewConn(ctx, *clickhouseDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect clickhouse")
	}
	defer conn.Close()

	if *migrate {
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			logger.Fatal().Err(err).Msg("clickhouse migrations")
		}
	}

	store := chstore.NewBarSeriesStore(conn)
	if err := store.InsertBulk(ctx, series.Symbol, series.Interval, series.Bars); err != nil {
		logger.Fatal().Err(err).Msg("insert bars")
	}

	logger.Info().Int("bars", series.Len()).Msg("import complete")
}

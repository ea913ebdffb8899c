// Package main re-runs stored trials and reports any divergence from
// their recorded results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"alpha-search-lab/internal/config"
	"alpha-search-lab/internal/domain"
	"alpha-search-lab/internal/logging"
	"alpha-search-lab/internal/marketdata"
	chstore "alpha-search-lab/internal/storage/clickhouse"
	pgstore "alpha-search-lab/internal/storage/postgres"
	"alpha-search-lab/internal/verification"
)

func main() {
	// Parse flags
	runID := flag.String("run-id", "", "Search run ID to verify (required)")
	configPath := flag.String("config", "", "Run config YAML the run was searched with (required)")
	csvPath := flag.String("csv", "", "Load bars from a CSV file instead of storage")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (required)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (bars)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	pretty := flag.Bool("pretty", false, "Pretty console log output")
	flag.Parse()

	logger := logging.New(logging.Config{Level: *logLevel, Pretty: *pretty})
	logging.SetGlobalLogger(logger)

	if *runID == "" {
		logger.Fatal().Msg("--run-id is required")
	}
	if *configPath == "" {
		logger.Fatal().Msg("--config is required")
	}
	if *postgresDSN == "" {
		logger.Fatal().Msg("--postgres-dsn is required")
	}

	ctx := context.Background()

	runCfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	// Load the same series the run was searched on
	var series *domain.PriceSeries
	if *csvPath != "" {
		series, err = marketdata.LoadCSV(*csvPath, runCfg.Symbol, runCfg.Interval)
	} else {
		if *clickhouseDSN == "" {
			logger.Fatal().Msg("either --csv or --clickhouse-dsn is required")
		}
		var conn *chstore.Conn
		conn, err = chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect clickhouse")
		}
		defer conn.Close()
		provider := marketdata.NewStoreProvider(chstore.NewBarSeriesStore(conn))
		series, err = provider.Fetch(ctx, runCfg.Symbol, runCfg.Interval, 0, 0)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("load series")
	}

	verifier, err := verification.New(verification.Options{
		TrialStore:    pgstore.NewTrialStore(pool),
		Series:        series,
		Strategy:      runCfg.Strategy,
		Split:         runCfg.Split,
		Costs:         runCfg.Costs,
		DefaultSize:   runCfg.DefaultSize,
		Objective:     runCfg.Objective,
		Aggregation:   runCfg.Aggregation,
		WindowWeights: runCfg.WindowWeights,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("create verifier")
	}

	report, err := verifier.VerifyRun(ctx, *runID)
	if err != nil {
		logger.Fatal().Err(err).Str("run_id", *runID).Msg("verify run")
	}

	fmt.Printf("Verified %d trials: %d matched, %d divergent\n",
		report.TotalTrials, report.MatchedTrials, report.DivergentTrials)
	for _, result := range report.Results {
		if result.Match {
			continue
		}
		fmt.Printf("  trial %s (seq %d):\n", result.TrialID, result.Seq)
		for _, d := range result.Divergences {
			fmt.Printf("    %s: stored %v, replayed %v\n", d.Field, d.Expected, d.Actual)
		}
	}

	if report.DivergentTrials > 0 {
		os.Exit(1)
	}
}

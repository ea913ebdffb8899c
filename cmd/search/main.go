// Package main runs a parameter search defined by a YAML run config.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"alpha-search-lab/internal/config"
	"alpha-search-lab/internal/domain"
	"alpha-search-lab/internal/logging"
	"alpha-search-lab/internal/marketdata"
	"alpha-search-lab/internal/observability"
	"alpha-search-lab/internal/search"
	"alpha-search-lab/internal/storage"
	chstore "alpha-search-lab/internal/storage/clickhouse"
	"alpha-search-lab/internal/storage/memory"
	"alpha-search-lab/internal/storage/migrations"
	pgstore "alpha-search-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Run config YAML path (required)")
	csvPath := flag.String("csv", "", "Load bars from a CSV file instead of storage")

	// Storage
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (runs and trials)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (bars)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage")
	migrate := flag.Bool("migrate", false, "Run migrations before searching")

	// Output
	outputJSON := flag.Bool("json", false, "Print the best trial as JSON")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address during the run")

	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	pretty := flag.Bool("pretty", false, "Pretty console log output")
	flag.Parse()

	logger := logging.New(logging.Config{Level: *logLevel, Pretty: *pretty})
	logging.SetGlobalLogger(logger)

	if *configPath == "" {
		logger.Fatal().Msg("--config is required")
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("shutting down, in-flight trials will complete")
		cancel()
	}()

	runCfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	searchCfg, err := runCfg.SearchConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("validate config")
	}

	// Create stores
	var runStore storage.RunStore
	var trialStore storage.TrialStore
	var barStore storage.BarSeriesStore

	if *useMemory {
		runStore = memory.NewRunStore()
		trialStore = memory.NewTrialStore()
		barStore = memory.NewBarSeriesStore()
	} else {
		if *postgresDSN != "" {
			pool, err := pgstore.NewPool(ctx, *postgresDSN)
			if err != nil {
				logger.Fatal().Err(err).Msg("connect postgres")
			}
			defer pool.Close()
			if *migrate {
				if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
					logger.Fatal().Err(err).Msg("postgres migrations")
				}
			}
			runStore = pgstore.NewRunStore(pool)
			trialStore = pgstore.NewTrialStore(pool)
		}
		if *clickhouseDSN != "" {
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
			barStore = chstore.NewBarSeriesStore(conn)
		}
	}

	// Load the price series
	var series *domain.PriceSeries
	if *csvPath != "" {
		series, err = marketdata.LoadCSV(*csvPath, runCfg.Symbol, runCfg.Interval)
	} else {
		if barStore == nil {
			logger.Fatal().Msg("either --csv or a bar store (--clickhouse-dsn or --use-memory with imported data) is required")
		}
		provider := marketdata.NewStoreProvider(barStore)
		series, err = provider.Fetch(ctx, runCfg.Symbol, runCfg.Interval, 0, 0)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("load series")
	}
	logger.Info().Str("symbol", series.Symbol).Int("bars", series.Len()).Msg("series loaded")

	// Optional metrics endpoint
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error().Err(err).Msg("metrics server")
			}
		}()
	}

	controller, err := search.New(search.Options{
		Config:     searchCfg,
		Series:     series,
		RunStore:   runStore,
		TrialStore: trialStore,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("create controller")
	}

	result, err := controller.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("search aborted")
	}
	if result == nil {
		os.Exit(1)
	}

	printResult(result, *outputJSON)
	for _, msg := range result.StoreErrors {
		logger.Warn().Str("error", msg).Msg("storage error during run")
	}
	if result.Run.Status == domain.RunStatusAborted {
		os.Exit(1)
	}
}

func printResult(result *search.RunResult, asJSON bool) {
	if asJSON {
		out := struct {
			RunID      string               `json:"run_id"`
			Status     string               `json:"status"`
			TrialsDone int                  `json:"trials_done"`
			Completed  int                  `json:"completed"`
			Failed     int                  `json:"failed"`
			Best       *domain.TrialResult  `json:"best,omitempty"`
		}{
			RunID:      result.Run.RunID,
			Status:     string(result.Run.Status),
			TrialsDone: result.Run.TrialsDone,
			Completed:  result.Completed,
			Failed:     result.Failed,
		}
		if len(result.Trials) > 0 && result.Trials[0].Status == domain.TrialStatusOK {
			out.Best = result.Trials[0]
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err == nil {
			fmt.Println(string(data))
		}
		return
	}

	fmt.Printf("Run %s: %s\n", result.Run.RunID, result.Run.Status)
	fmt.Printf("  Trials: %d (%d ok, %d failed)\n", result.Run.TrialsDone, result.Completed, result.Failed)
	if len(result.Trials) > 0 && result.Trials[0].Status == domain.TrialStatusOK {
		best := result.Trials[0]
		fmt.Printf("  Best: trial %s (seq %d)\n", best.TrialID, best.Seq)
		fmt.Printf("  Score: %.6f\n", best.Score)
		fmt.Printf("  Binding: %s\n", best.Binding.Key())
	} else {
		fmt.Println("  No successful trials")
	}
}

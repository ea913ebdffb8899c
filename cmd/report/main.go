// Package main renders reports for finished search runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"alpha-search-lab/internal/decision"
	"alpha-search-lab/internal/logging"
	"alpha-search-lab/internal/reporting"
	"alpha-search-lab/internal/split"
	pgstore "alpha-search-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	runID := flag.String("run-id", "", "Search run ID to report on (required)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (required)")
	outputDir := flag.String("output-dir", "reports", "Output directory for generated files")
	top := flag.Int("top", 20, "Leaderboard size")
	gate := flag.Bool("gate", false, "Also evaluate the GO/NO-GO decision gate")
	stdout := flag.Bool("stdout", false, "Print the Markdown report instead of writing files")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	pretty := flag.Bool("pretty", false, "Pretty console log output")
	flag.Parse()

	logger := logging.New(logging.Config{Level: *logLevel, Pretty: *pretty})
	logging.SetGlobalLogger(logger)

	if *runID == "" {
		logger.Fatal().Msg("--run-id is required")
	}
	if *postgresDSN == "" {
		logger.Fatal().Msg("--postgres-dsn is required")
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	runStore := pgstore.NewRunStore(pool)
	trialStore := pgstore.NewTrialStore(pool)

	generator := reporting.NewGenerator(runStore, trialStore).WithLeaderboardSize(*top)

	report, err := generator.Generate(ctx, *runID)
	if err != nil {
		logger.Fatal().Err(err).Str("run_id", *runID).Msg("generate report")
	}

	markdown := reporting.RenderMarkdown(report)

	var gateMarkdown string
	if *gate {
		input, err := decision.NewBuilder(runStore, trialStore).Build(ctx, *runID, nil, split.Config{})
		if err != nil {
			logger.Fatal().Err(err).Msg("build gate input")
		}
		gateMarkdown = decision.RenderMarkdown(*input, decision.NewEvaluator().Evaluate(*input))
	}

	if *stdout {
		fmt.Print(markdown)
		if gateMarkdown != "" {
			fmt.Println()
			fmt.Print(gateMarkdown)
		}
		return
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("create output dir")
	}

	mdPath := filepath.Join(*outputDir, *runID+".md")
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		logger.Fatal().Err(err).Msg("write markdown report")
	}

	csvPath := filepath.Join(*outputDir, *runID+".csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.Leaderboard)), 0o644); err != nil {
		logger.Fatal().Err(err).Msg("write csv report")
	}

	if gateMarkdown != "" {
		gatePath := filepath.Join(*outputDir, *runID+"-decision.md")
		if err := os.WriteFile(gatePath, []byte(gateMarkdown), 0o644); err != nil {
			logger.Fatal().Err(err).Msg("write decision report")
		}
		logger.Info().Str("decision", gatePath).Msg("decision gate written")
	}

	logger.Info().Str("markdown", mdPath).Str("csv", csvPath).Msg("report written")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"bizpulse/internal/config"
	"bizpulse/internal/exporter"
	"bizpulse/internal/infrastructure"
	"bizpulse/internal/pipeline"
	"bizpulse/internal/workbook"
	"bizpulse/pkg/contracts"
)

func main() {
	in := flag.String("in", "", "input workbook path (overrides configuration)")
	out := flag.String("out", "", "output directory (overrides configuration)")
	configFile := flag.String("config", "", "configuration file path")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	// .env is optional; environment variables win over the config file.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *in != "" {
		cfg.Paths.InputWorkbook = *in
	}
	if *out != "" {
		cfg.Paths.OutputDir = *out
	}
	if cfg.Paths.InputWorkbook == "" {
		slog.Error("No input workbook given; pass -in or set paths.input_workbook")
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	logger.Info("Starting report generation",
		slog.String("version", contracts.Version),
		slog.String("input", cfg.Paths.InputWorkbook),
		slog.String("output_dir", cfg.Paths.OutputDir))

	input, err := workbook.LoadInput(cfg.Paths.InputWorkbook)
	if err != nil {
		logger.Error("Failed to load input workbook", "error", err)
		os.Exit(1)
	}

	res, err := pipeline.NewRunner(cfg, logger).Run(context.Background(), input)
	if err != nil {
		logger.Error("Pipeline run failed", "error", err)
		os.Exit(1)
	}

	if err := exporter.NewTableExporter(logger, cfg.Paths.OutputDir).Export(res); err != nil {
		logger.Error("Report export failed", "error", err, "run_id", res.RunID)
		os.Exit(1)
	}

	logger.Info("Report generation complete",
		slog.String("run_id", res.RunID),
		slog.Int("fact_rows", len(res.Facts)),
		slog.Duration("duration", res.Duration))
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

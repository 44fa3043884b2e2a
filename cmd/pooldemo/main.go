// Command pooldemo exercises the worker pool: ordered results, failure
// isolation, and throughput scaling across worker counts. With -metrics-addr
// set it serves the pool metrics while it runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/utkarsh5026/threadpool/internal/config"
	"github.com/utkarsh5026/threadpool/internal/logger"
)

var scenarios = []string{"squares", "failure", "throughput"}

func main() {
	if err := run(os.Args[1:]); err != nil {
		_, _ = red.Fprintf(os.Stderr, "pooldemo: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("pooldemo", flag.ContinueOnError)
	var (
		configPath  = fs.String("config", "", "path to a YAML or JSON config file")
		workers     = fs.Int("workers", 0, "number of workers (overrides config)")
		tasks       = fs.Int("tasks", 2000, "tasks per throughput batch")
		scenario    = fs.String("scenario", "all", "squares|failure|throughput|all")
		metricsAddr = fs.String("metrics-addr", "", "serve /metrics and /healthz on this address")
		hold        = fs.Bool("hold", false, "keep serving metrics until interrupted")
		logFormat   = fs.String("log-format", "", "text|json (overrides config)")
		logLevel    = fs.String("log-level", "", "debug|info|warn|error (overrides config)")
		noProgress  = fs.Bool("no-progress", false, "disable the progress bar")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyFlags(cfg, fs, *workers, *metricsAddr, *logFormat, *logLevel)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if *tasks < 1 {
		return fmt.Errorf("tasks must be at least 1, got %d", *tasks)
	}

	selected, err := selectScenarios(*scenario)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	baseLog, err := logger.New(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return err
	}
	log := baseLog.With("run", runID)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	var srv *metricsServer
	if cfg.Metrics.Enabled {
		srv, err = startMetricsServer(cfg.Metrics.Addr, newRouter(reg, runID), log)
		if err != nil {
			return err
		}
		defer srv.stop()
	}

	d := &demo{
		cfg:      cfg,
		log:      log,
		reg:      reg,
		out:      os.Stdout,
		tasks:    *tasks,
		progress: !*noProgress,
	}

	_, _ = yellow.Printf("run %s: %d workers\n", runID, cfg.Workers)
	for _, name := range selected {
		var err error
		switch name {
		case "squares":
			err = d.squares()
		case "failure":
			err = d.failure()
		case "throughput":
			err = d.throughput()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if srv != nil && *hold {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		log.Info("holding metrics server, press Ctrl+C to exit", "addr", srv.addr())
		<-ctx.Done()
	}
	return nil
}

// applyFlags copies explicitly set flags over the file configuration.
func applyFlags(cfg *config.Config, fs *flag.FlagSet, workers int, metricsAddr, logFormat, logLevel string) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.Workers = workers
		case "metrics-addr":
			cfg.Metrics.Addr = metricsAddr
			cfg.Metrics.Enabled = metricsAddr != ""
		case "log-format":
			cfg.Log.Format = logFormat
		case "log-level":
			cfg.Log.Level = logLevel
		}
	})
}

func selectScenarios(name string) ([]string, error) {
	if name == "all" {
		return scenarios, nil
	}
	if !slices.Contains(scenarios, name) {
		return nil, fmt.Errorf("unknown scenario %q", name)
	}
	return []string{name}, nil
}

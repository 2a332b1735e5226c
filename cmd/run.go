package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/UnknownOlympus/hermes/internal/address"
	"github.com/UnknownOlympus/hermes/internal/cache"
	"github.com/UnknownOlympus/hermes/internal/config"
	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/UnknownOlympus/hermes/internal/metrics"
	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/report"
	"github.com/UnknownOlympus/hermes/internal/repository"
	"github.com/UnknownOlympus/hermes/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve the depot and every stop of an address list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}

			logger := setupLogger(cfg.Env, os.Stderr)

			return runResolution(cmd.Context(), cfg, logger, cmd.OutOrStdout(), time.Now())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "configuration file (default ./"+config.DefaultConfigFile+" if present)")
	flags.String("depot", "", "depot address, start and end of every route")
	flags.StringP("input", "i", "", "address list, one address per line")
	flags.StringP("out", "o", "", "output root for run directories")
	flags.String("cache", "", "cache root for geocoding results")
	flags.String("provider", "", "geocoding provider: openrouteservice, google, nominatim, visicom")
	flags.String("api-key", "", "geocoding provider API key")

	return cmd
}

// runResolution executes one run and writes its artifacts. A failed depot still
// produces the debug report and the metrics snapshot before the error is returned.
func runResolution(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer, now time.Time) error {
	runCfg, err := cfg.RunConfig(config.NewRunID(now, cfg.Location()))
	if err != nil {
		return err
	}

	dirs, err := report.NewRunDirs(runCfg)
	if err != nil {
		return err
	}

	input, err := address.ReadFile(runCfg.InputFile)
	if err != nil {
		return err
	}
	candidates := address.StripDepot(input.Addresses, runCfg.DepotAddress)

	logger.InfoContext(ctx, "Input loaded",
		"run_id", runCfg.RunID,
		"raw", input.RawCount,
		"addresses", len(input.Addresses),
		"candidates", len(candidates))

	geoCache, closeCache, err := newCache(ctx, cfg, dirs, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	// Create a separate registry so the snapshot only holds run metrics.
	reg := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics(reg)

	provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:           geocoding.ProviderType(cfg.Provider),
		APIKey:         runCfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Country:        cfg.Country,
		ConnectTimeout: cfg.HTTP.ConnectTimeout,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create geocoding provider: %w", err)
	}

	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.Provider)

	client := geocoding.NewClient(provider, geoCache, appMetrics, logger,
		geocoding.WithRetryPolicy(geocoding.RetryPolicy{
			MaxAttempts:    cfg.Retry.MaxAttempts,
			InitialBackoff: cfg.Retry.InitialBackoff,
			Multiplier:     cfg.Retry.Multiplier,
		}),
		geocoding.WithRateLimit(cfg.RateLimit),
	)

	var opts []service.Option
	if bar := newProgressBar(len(candidates) + 1); bar != nil {
		defer bar.Finish()
		opts = append(opts, service.WithProgress(bar))
	}

	result, runErr := service.NewResolutionService(logger, client, opts...).Run(ctx, runCfg, candidates)

	run := report.Run{
		Config:      runCfg,
		Input:       input,
		Candidates:  candidates,
		Depot:       result.Depot,
		Stops:       result.Stops,
		FailedStops: result.FailedStops,
		CacheHits:   result.CacheHits,
		APIHits:     result.APIHits,
		Generated:   now.In(cfg.Location()),
	}

	if err = report.WriteDebugReport(dirs.DebugReport, run); err != nil {
		return err
	}
	if err = metrics.WriteTextfile(dirs.Metrics, reg); err != nil {
		logger.WarnContext(ctx, "Failed to write metrics snapshot", "error", err)
	}
	if runErr != nil {
		return runErr
	}

	if err = report.WriteRoutesTxt(dirs.RoutesTxt, run); err != nil {
		return err
	}
	if err = report.WriteRoutesJSON(dirs.RoutesJSON, run); err != nil {
		return err
	}

	if cfg.Database.URL != "" {
		if err = persistRun(ctx, cfg.Database.URL, result.Record(runCfg), logger); err != nil {
			return err
		}
	}

	fmt.Fprintln(stdout, "Run created: "+dirs.RunDir)
	for _, path := range []string{dirs.RoutesTxt, dirs.RoutesJSON, dirs.DebugReport, dirs.Metrics} {
		fmt.Fprintln(stdout, "- "+path)
	}

	return nil
}

// newCache builds the configured cache backend and a function releasing it.
func newCache(
	ctx context.Context,
	cfg *config.Config,
	dirs report.RunDirs,
	logger *slog.Logger,
) (cache.Cache, func(), error) {
	if cfg.Cache.Backend != "redis" {
		return cache.NewFileCache(dirs.GeocodeDir, logger), func() {}, nil
	}

	redisCache, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Cache.TTL, logger)
	if err != nil {
		return nil, nil, err
	}

	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			logger.WarnContext(ctx, "Failed to close redis cache", "error", err)
		}
	}, nil
}

// newProgressBar returns nil when stderr is not a terminal.
func newProgressBar(total int) *progressbar.ProgressBar {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Geocoding"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func persistRun(ctx context.Context, url string, record models.RunRecord, logger *slog.Logger) error {
	pool, err := repository.NewDatabase(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer pool.Close()

	return saveRun(ctx, repository.NewRepository(pool, logger), record, logger)
}

// saveRun makes sure the schema exists and stores record in one transaction.
func saveRun(ctx context.Context, repo repository.Interface, record models.RunRecord, logger *slog.Logger) error {
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := repo.SaveRun(ctx, record); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Run persisted", "run_id", record.RunID)

	return nil
}

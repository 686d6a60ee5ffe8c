package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/rdce-vr/Local-Track/internal/cache"
	"github.com/rdce-vr/Local-Track/internal/config"
	"github.com/rdce-vr/Local-Track/internal/database"
	"github.com/rdce-vr/Local-Track/internal/fetcher"
	"github.com/rdce-vr/Local-Track/internal/logging"
	"github.com/rdce-vr/Local-Track/internal/scheduler"
	"github.com/rdce-vr/Local-Track/internal/source"
	"github.com/rdce-vr/Local-Track/internal/store"
	"github.com/rdce-vr/Local-Track/internal/version"
)

// Job IDs.
const (
	JobFuel = "daily_fuel_price_fetch"
	JobGold = "daily_gold_price_fetch"
)

var _ fetcher.Publisher = (*cache.Redis)(nil)

// deps holds the components built from configuration.
type deps struct {
	cfg     *config.Config
	logger  *slog.Logger
	loc     *time.Location
	store   store.Store
	cache   *cache.Redis // nil when disabled
	fetcher *fetcher.Fetcher
}

func (d *deps) Close() {
	if d.cache != nil {
		d.cache.Close()
	}
}

// setup loads configuration and wires every component. dryRun swaps the
// Postgres store for an in-memory one and disables the cache.
func setup(c *cli.Context, dryRun bool) (*deps, error) {
	cfg, err := config.LoadAndValidate(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	if lvl := c.GlobalString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}

	logger, err := logging.Setup(cfg.Logging, os.Stderr)
	if err != nil {
		return nil, err
	}
	logger.Debug("configuration loaded",
		"version", version.Version,
		"province", cfg.Province,
		"timezone", cfg.Timezone,
		"fuel_sources", len(cfg.Sources.Fuel),
		"dry_run", dryRun,
	)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg, logger: logger, loc: loc}

	if dryRun {
		d.store = store.NewMemory()
	} else {
		d.store = store.NewPostgres(database.BuildConnString(cfg.Database), logger)
	}

	fuel, gold, err := buildSources(cfg)
	if err != nil {
		return nil, err
	}

	var opts []fetcher.Option
	if cfg.Cache.Enabled() && !dryRun {
		d.cache = cache.New(cfg.Cache)
		opts = append(opts, fetcher.WithPublisher(d.cache))
	}
	d.fetcher = fetcher.New(fuel, gold, d.store, logger, opts...)

	return d, nil
}

// buildSources creates the fuel fallback chain in configured order and the
// gold source.
func buildSources(cfg *config.Config) ([]fetcher.Source, fetcher.Source, error) {
	client := source.NewClient(cfg.HTTP.Timeout, source.WithUserAgent(cfg.HTTP.UserAgent))

	fuel := make([]fetcher.Source, 0, len(cfg.Sources.Fuel))
	for _, sc := range cfg.Sources.Fuel {
		src, err := source.NewSource(source.Args{Config: sc, Client: client, Province: cfg.Province})
		if err != nil {
			return nil, nil, fmt.Errorf("fuel source %s: %w", sc.Name, err)
		}
		fuel = append(fuel, src)
	}

	gold, err := source.NewSource(source.Args{Config: cfg.Sources.Gold, Client: client})
	if err != nil {
		return nil, nil, fmt.Errorf("gold source %s: %w", cfg.Sources.Gold.Name, err)
	}
	return fuel, gold, nil
}

// buildJobs returns the daily fuel and gold jobs.
func buildJobs(cfg *config.Config, loc *time.Location, f *fetcher.Fetcher) ([]scheduler.JobSpec, error) {
	fuelAt, err := jobSchedule(cfg.Schedule.Fuel, loc)
	if err != nil {
		return nil, fmt.Errorf("schedule.fuel: %w", err)
	}
	goldAt, err := jobSchedule(cfg.Schedule.Gold, loc)
	if err != nil {
		return nil, fmt.Errorf("schedule.gold: %w", err)
	}

	return []scheduler.JobSpec{
		{
			ID:       JobFuel,
			Schedule: fuelAt,
			Run: func(ctx context.Context) error {
				_, err := f.RunFuel(ctx)
				return err
			},
		},
		{
			ID:       JobGold,
			Schedule: goldAt,
			Run: func(ctx context.Context) error {
				_, err := f.RunGold(ctx)
				return err
			},
		},
	}, nil
}

func jobSchedule(t config.TimeOfDay, loc *time.Location) (scheduler.Schedule, error) {
	if t.Cron != "" {
		return scheduler.Cron(t.Cron, loc)
	}
	return scheduler.Daily(t.Hour, t.Minute, loc)
}

// fetchFailureListener logs exhausted sources reported by scheduled jobs.
func fetchFailureListener(logger *slog.Logger) scheduler.Listener {
	return func(ev scheduler.Event) {
		var fetchErr *fetcher.FetchError
		if errors.As(ev.Err, &fetchErr) {
			logger.Warn("no source produced prices, keeping stored history",
				"job", ev.JobID,
				"run_id", ev.RunID,
				"domain", fetchErr.Domain,
				"source", fetchErr.Source,
			)
		}
	}
}

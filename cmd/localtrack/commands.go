package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/rdce-vr/Local-Track/internal/fetcher"
	"github.com/rdce-vr/Local-Track/internal/health"
	"github.com/rdce-vr/Local-Track/internal/model"
	"github.com/rdce-vr/Local-Track/internal/scheduler"
)

func fetchCommand(c *cli.Context) error {
	target := c.Args().First()
	if target == "" {
		target = "all"
	}

	d, err := setup(c, c.Bool("dry-run"))
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var reports []*fetcher.Report
	switch target {
	case "fuel":
		r, ferr := d.fetcher.RunFuel(ctx)
		reports, err = []*fetcher.Report{r}, ferr
	case "gold":
		r, ferr := d.fetcher.RunGold(ctx)
		reports, err = []*fetcher.Report{r}, ferr
	case "all":
		reports, err = d.fetcher.RunAll(ctx)
	default:
		return cli.NewExitError(fmt.Sprintf("unknown fetch target %q, want fuel, gold or all", target), 2)
	}

	writeReports(c.App.Writer, reports)

	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}

func writeReports(w io.Writer, reports []*fetcher.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	for _, r := range reports {
		if r == nil {
			continue
		}
		for _, a := range r.Failed {
			fmt.Fprintf(tw, "%s\tsource %s failed\t%v\n", r.Domain, a.Source, a.Err)
		}
		for _, it := range r.Items {
			line := fmt.Sprintf("%s\t%s\t%d\t%s", r.Domain, it.Commodity, it.Price, it.Outcome)
			if it.Err != nil {
				line += "\t" + it.Err.Error()
			}
			fmt.Fprintln(tw, line)
		}
	}
}

func scheduleCommand(c *cli.Context) error {
	d, err := setup(c, false)
	if err != nil {
		return err
	}
	defer d.Close()
	logger := d.logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := d.store.EnsureSchema(ctx); err != nil {
		// Each store operation retries the schema, so a database that is
		// down at boot does not stop the scheduler.
		logger.Warn("ensure schema failed", "error", err)
	}

	jobs, err := buildJobs(d.cfg, d.loc, d.fetcher)
	if err != nil {
		return err
	}
	sched, err := scheduler.New(jobs,
		scheduler.WithLogger(logger),
		scheduler.WithListener(fetchFailureListener(logger)),
	)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if port := d.cfg.Health.Port; port > 0 {
		var cachePinger health.Pinger
		if d.cache != nil {
			cachePinger = d.cache
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           health.NewHandler(d.store, cachePinger, sched, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			logger.Info("starting health server", "port", port)
			serveHealth(srv, logger)
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		if err := sched.Start(gctx); err != nil {
			return err
		}
		logger.Info("scheduler running", "timezone", d.loc.String())

		<-gctx.Done()
		logger.Info("shutting down", "grace", d.cfg.Schedule.ShutdownGrace)

		graceCtx, cancel := context.WithTimeout(context.Background(), d.cfg.Schedule.ShutdownGrace)
		defer cancel()
		return sched.Stop(graceCtx)
	})

	return g.Wait()
}

// serveHealth runs srv until it is shut down. A failure is logged and does
// not stop the scheduler.
func serveHealth(srv *http.Server, logger *slog.Logger) {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("health server error", "error", err)
	}
}

func jobsCommand(c *cli.Context) error {
	d, err := setup(c, true)
	if err != nil {
		return err
	}
	defer d.Close()

	jobs, err := buildJobs(d.cfg, d.loc, d.fetcher)
	if err != nil {
		return err
	}
	sched, err := scheduler.New(jobs, scheduler.WithLogger(d.logger))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "JOB\tNEXT RUN")
	for _, info := range sched.Jobs() {
		fmt.Fprintf(tw, "%s\t%s\n", info.ID, info.Next.In(d.loc).Format(time.RFC3339))
	}
	return nil
}

// latestView is the JSON document printed by the latest command.
type latestView struct {
	Fuel         []fuelView             `json:"fuel"`
	LastUpdate   *time.Time             `json:"last_fuel_update,omitempty"`
	Gold         *model.GoldObservation `json:"gold,omitempty"`
	PreviousGold *model.GoldObservation `json:"previous_gold,omitempty"`
}

type fuelView struct {
	model.PriceObservation
	Group    string `json:"group,omitempty"`
	Previous *int64 `json:"previous_price,omitempty"`
}

func latestCommand(c *cli.Context) error {
	d, err := setup(c, false)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Database.ConnectTimeout+10*time.Second)
	defer cancel()

	view, err := buildLatestView(ctx, d)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func buildLatestView(ctx context.Context, d *deps) (*latestView, error) {
	latest, err := d.store.LatestFuel(ctx)
	if err != nil {
		return nil, err
	}
	previous, err := d.store.PreviousFuel(ctx)
	if err != nil {
		return nil, err
	}

	prev := make(map[string]int64, len(previous))
	for _, p := range previous {
		prev[p.Commodity] = p.Price
	}

	catalog := model.DefaultCatalog()
	view := &latestView{Fuel: make([]fuelView, 0, len(latest))}
	for _, obs := range latest {
		fv := fuelView{PriceObservation: obs, Group: catalog.Group(obs.Commodity)}
		if p, ok := prev[obs.Commodity]; ok {
			fv.Previous = &p
		}
		view.Fuel = append(view.Fuel, fv)
		if view.LastUpdate == nil || obs.ObservedAt.After(*view.LastUpdate) {
			at := obs.ObservedAt
			view.LastUpdate = &at
		}
	}

	if view.Gold, err = d.store.LatestGold(ctx); err != nil {
		return nil, err
	}
	if view.PreviousGold, err = d.store.PreviousGold(ctx); err != nil {
		return nil, err
	}
	return view, nil
}

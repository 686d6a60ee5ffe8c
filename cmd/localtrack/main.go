// Command localtrack fetches regional fuel and gold prices into the price
// store, either once or on a daily schedule.
package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/rdce-vr/Local-Track/internal/version"
)

func main() {
	app := cli.NewApp()
	app.Name = "localtrack"
	app.Usage = "track Jawa Tengah fuel prices and gold prices"
	app.Version = version.String()
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "path to YAML config file; defaults apply when empty",
			EnvVar: "LOCALTRACK_CONFIG",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "override logging.level (debug, info, warn, error)",
			EnvVar: "LOCALTRACK_LOG_LEVEL",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "fetch",
			Usage:     "fetch prices once and store the changes",
			ArgsUsage: "[fuel|gold|all]",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "dry-run",
					Usage: "use an in-memory store instead of Postgres",
				},
			},
			Action: fetchCommand,
		},
		{
			Name:   "schedule",
			Usage:  "run the daily jobs until interrupted",
			Action: scheduleCommand,
		},
		{
			Name:   "jobs",
			Usage:  "list scheduled jobs and their next run",
			Action: jobsCommand,
		},
		{
			Name:   "latest",
			Usage:  "print the latest and previous stored prices as JSON",
			Action: latestCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("localtrack failed", "error", err)
		os.Exit(1)
	}
}

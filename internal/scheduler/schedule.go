package scheduler

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone names in CRON_TZ must resolve without system zoneinfo

	"github.com/robfig/cron/v3"
)

// Schedule yields the next activation time after a given time.
type Schedule = cron.Schedule

// Daily returns a schedule firing every day at hour:minute in loc.
func Daily(hour, minute int, loc *time.Location) (Schedule, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}
	return Cron(fmt.Sprintf("%d %d * * *", minute, hour), loc)
}

// Cron parses a standard five field cron expression evaluated in loc. An
// expression that names its own zone with CRON_TZ= or TZ= keeps it.
func Cron(expr string, loc *time.Location) (Schedule, error) {
	expr = strings.TrimSpace(expr)
	if !strings.HasPrefix(expr, "CRON_TZ=") && !strings.HasPrefix(expr, "TZ=") {
		if loc == nil {
			loc = time.Local
		}
		expr = "CRON_TZ=" + loc.String() + " " + expr
	}
	return cron.ParseStandard(expr)
}

package config

import (
	"errors"
	"fmt"
	"time"

	// Embedded zone database so Asia/Jakarta resolves on slim images.
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
)

var validKinds = map[string]bool{"table": true, "text": true, "json": true}

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q is invalid: %w", c.Timezone, err)
	}
	if c.Province == "" {
		return errors.New("province is required")
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New("http.timeout must be > 0")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if len(c.Sources.Fuel) == 0 {
		return errors.New("sources.fuel must list at least one source")
	}
	for i, s := range c.Sources.Fuel {
		if err := s.validate(fmt.Sprintf("sources.fuel[%d]", i)); err != nil {
			return err
		}
		if s.Kind == "json" {
			return fmt.Errorf("sources.fuel[%d].kind must be table or text, got json", i)
		}
	}
	if err := c.Sources.Gold.validate("sources.gold"); err != nil {
		return err
	}
	if c.Sources.Gold.Kind != "json" {
		return fmt.Errorf("sources.gold.kind must be json, got %s", c.Sources.Gold.Kind)
	}
	if c.Sources.Gold.BuyField == "" || c.Sources.Gold.SellField == "" {
		return errors.New("sources.gold.buy_field and sources.gold.sell_field are required")
	}

	if err := c.Schedule.Fuel.validate("schedule.fuel"); err != nil {
		return err
	}
	if err := c.Schedule.Gold.validate("schedule.gold"); err != nil {
		return err
	}

	if c.Health.Port < 0 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 0 and 65535, got %d", c.Health.Port)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %s", c.Logging.Format)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Port < 1 || db.Port > 65535 {
		return fmt.Errorf("%s.port must be between 1 and 65535, got %d", prefix, db.Port)
	}
	return nil
}

func (s SourceConfig) validate(prefix string) error {
	if s.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if s.URL == "" {
		return fmt.Errorf("%s.url is required", prefix)
	}
	if !validKinds[s.Kind] {
		return fmt.Errorf("%s.kind %q is not one of table, text, json", prefix, s.Kind)
	}
	return nil
}

func (t TimeOfDay) validate(prefix string) error {
	if t.Cron != "" {
		if _, err := cron.ParseStandard(t.Cron); err != nil {
			return fmt.Errorf("%s.cron %q is invalid: %w", prefix, t.Cron, err)
		}
		return nil
	}
	if t.Hour < 0 || t.Hour > 23 {
		return fmt.Errorf("%s.hour must be between 0 and 23, got %d", prefix, t.Hour)
	}
	if t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("%s.minute must be between 0 and 59, got %d", prefix, t.Minute)
	}
	return nil
}

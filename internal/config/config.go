package config

import "time"

// Config is the root configuration for a Local-Track process.
type Config struct {
	Timezone string         `yaml:"timezone"` // IANA zone used by the scheduler
	Province string         `yaml:"province"` // Province row selected by table sources
	HTTP     HTTPConfig     `yaml:"http"`
	Database DBConfig       `yaml:"database"`
	Sources  SourcesConfig  `yaml:"sources"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
	Health   HealthConfig   `yaml:"health"`
}

// HTTPConfig holds upstream request settings.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// DBConfig holds the Postgres connection used by the price store.
type DBConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Name           string        `yaml:"name"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	SSLMode        string        `yaml:"ssl_mode"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// SourcesConfig lists upstream sources per domain.
// Fuel sources are tried in order; the first is primary.
type SourcesConfig struct {
	Fuel []SourceConfig `yaml:"fuel"`
	Gold SourceConfig   `yaml:"gold"`
}

// SourceConfig describes one upstream endpoint.
type SourceConfig struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"` // table, text or json
	URL  string `yaml:"url"`

	// JSON sources only: dotted paths into the response document.
	BuyField  string `yaml:"buy_field"`
	SellField string `yaml:"sell_field"`
	MidField  string `yaml:"mid_field"` // optional, derived from buy/sell when empty
}

// ScheduleConfig holds job trigger times in Timezone.
type ScheduleConfig struct {
	Fuel          TimeOfDay     `yaml:"fuel"`
	Gold          TimeOfDay     `yaml:"gold"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

// TimeOfDay is a daily trigger. A non-empty Cron replaces Hour and Minute
// with a five field cron expression evaluated in Timezone.
type TimeOfDay struct {
	Hour   int    `yaml:"hour"`
	Minute int    `yaml:"minute"`
	Cron   string `yaml:"cron"`
}

// CacheConfig holds the optional Redis read model. Empty Addr disables it.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	Prefix   string        `yaml:"prefix"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// HealthConfig holds the health server settings. Port 0 disables it.
type HealthConfig struct {
	Port int `yaml:"port"`
}

// Enabled reports whether the Redis cache is configured.
func (c CacheConfig) Enabled() bool {
	return c.Addr != ""
}

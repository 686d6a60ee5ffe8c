package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultTimezone       = "Asia/Jakarta"
	DefaultProvince       = "Jawa Tengah"
	DefaultHTTPTimeout    = 20 * time.Second
	DefaultUserAgent      = "local-track/1.0"
	DefaultDBHost         = "localhost"
	DefaultDBPort         = 5432
	DefaultDBName         = "localtrack"
	DefaultDBUser         = "localtrack"
	DefaultDBSSLMode      = "prefer"
	DefaultConnectTimeout = 30 * time.Second
	DefaultFuelHour       = 3
	DefaultGoldHour       = 6
	DefaultShutdownGrace  = 30 * time.Second
	DefaultCachePrefix    = "localtrack"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"

	DefaultPatraNiagaURL  = "https://pertaminapatraniaga.com/page/harga-terbaru-bbm"
	DefaultMyPertaminaURL = "https://mypertamina.id/about/product-price"
	DefaultGoldURL        = "https://api.treasury.id/api/v1/antigrvty/gold/rate"
	DefaultGoldBuyField   = "data.buying_rate"
	DefaultGoldSellField  = "data.selling_rate"
)

// DefaultFuelSources returns the primary and fallback fuel sources.
func DefaultFuelSources() []SourceConfig {
	return []SourceConfig{
		{Name: "patra-niaga", Kind: "table", URL: DefaultPatraNiagaURL},
		{Name: "mypertamina", Kind: "text", URL: DefaultMyPertaminaURL},
	}
}

// DefaultGoldSource returns the gold JSON source.
func DefaultGoldSource() SourceConfig {
	return SourceConfig{
		Name:      "treasury",
		Kind:      "json",
		URL:       DefaultGoldURL,
		BuyField:  DefaultGoldBuyField,
		SellField: DefaultGoldSellField,
	}
}

func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.Province == "" {
		c.Province = DefaultProvince
	}

	// HTTP defaults
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = DefaultHTTPTimeout
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = DefaultUserAgent
	}

	applyDBDefaults(&c.Database)

	// Source defaults
	if len(c.Sources.Fuel) == 0 {
		c.Sources.Fuel = DefaultFuelSources()
	}
	if c.Sources.Gold.URL == "" {
		c.Sources.Gold = DefaultGoldSource()
	}
	if c.Sources.Gold.Kind == "" {
		c.Sources.Gold.Kind = "json"
	}

	// Schedule defaults. A zero hour is a valid trigger, so only an
	// entirely empty schedule section picks up the defaults.
	if c.Schedule.Fuel == (TimeOfDay{}) && c.Schedule.Gold == (TimeOfDay{}) {
		c.Schedule.Fuel = TimeOfDay{Hour: DefaultFuelHour}
		c.Schedule.Gold = TimeOfDay{Hour: DefaultGoldHour}
	}
	if c.Schedule.ShutdownGrace == 0 {
		c.Schedule.ShutdownGrace = DefaultShutdownGrace
	}

	if c.Cache.Prefix == "" {
		c.Cache.Prefix = DefaultCachePrefix
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Host == "" {
		db.Host = DefaultDBHost
	}
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.Name == "" {
		db.Name = DefaultDBName
	}
	if db.User == "" {
		db.User = DefaultDBUser
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.ConnectTimeout == 0 {
		db.ConnectTimeout = DefaultConnectTimeout
	}
}

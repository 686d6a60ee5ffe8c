package database

import (
	"fmt"
	"net/url"

	"github.com/rdce-vr/Local-Track/internal/config"
)

// BuildConnString builds a PostgreSQL connection string from config.
func BuildConnString(cfg config.DBConfig) string {
	// URL-encode credentials to handle special characters
	escapedUser := url.QueryEscape(cfg.User)
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	userInfo := escapedUser
	if cfg.Password != "" {
		userInfo += ":" + escapedPassword
	}

	connStr := fmt.Sprintf(
		"postgres://%s@%s:%d/%s?sslmode=%s",
		userInfo,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)

	if secs := int(cfg.ConnectTimeout.Seconds()); secs > 0 {
		connStr += fmt.Sprintf("&connect_timeout=%d", secs)
	}

	return connStr
}

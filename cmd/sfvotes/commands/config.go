package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"sfvotes/internal/components/configutil"
	"sfvotes/internal/components/sqliteutil"
	"sfvotes/internal/components/telemetry"
	"sfvotes/internal/legistar"
	"sfvotes/internal/page"
)

const defaultConfigName = "sfvotes.json5"

type Config struct {
	BaseUrl  string            `json:"base_url"`
	Database sqliteutil.Config `json:"database"`

	// pointers so an explicit 0 or false survives defaults, 0 disables pacing
	RequestsPerSecond *float64 `json:"requests_per_second"`
	CloudflareBypass  *bool    `json:"cloudflare_bypass"`

	RequestTimeoutSeconds int `json:"request_timeout_seconds"`
	SettleDelayMs         int `json:"settle_delay_ms"`
	MaxPagerExpansions    int `json:"max_pager_expansions"`

	Telemetry telemetry.Config `json:"telemetry"`
}

func defaultConfig() Config {
	bypass := true
	rps := 2.0
	return Config{
		BaseUrl:               "https://sfgov.legistar.com",
		Database:              sqliteutil.Config{File: "vote_db.sqlite"},
		RequestsPerSecond:     &rps,
		RequestTimeoutSeconds: 30,
		MaxPagerExpansions:    legistar.DefaultMaxExpansions,
		CloudflareBypass:      &bypass,
	}
}

// loadConfig reads the config at path, or the nearest sfvotes.json5 when path is
// empty, and fills in defaults. A non-empty dbOverride replaces the database settings.
func loadConfig(path, dbOverride string) (Config, error) {
	var config Config
	var err error
	if path != "" {
		config, err = configutil.ReadConfig[Config](path)
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config %s does not exist", path)
		}
	} else {
		config, err = configutil.ReadRecursively[Config](defaultConfigName)
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("no config file found, using defaults", "name", defaultConfigName)
			err = nil
		}
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if dbOverride != "" {
		config.Database = sqliteutil.Config{File: dbOverride}
	}
	return configutil.WithDefaults(config, defaultConfig())
}

func (c Config) sessionOptions(dumpDir string) page.SessionOptions {
	var rps float64
	if c.RequestsPerSecond != nil {
		rps = *c.RequestsPerSecond
	}
	return page.SessionOptions{
		RequestsPerSecond: rps,
		Timeout:           time.Duration(c.RequestTimeoutSeconds) * time.Second,
		CloudflareBypass:  c.CloudflareBypass != nil && *c.CloudflareBypass,
		DumpDir:           dumpDir,
	}
}

func (c Config) settleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

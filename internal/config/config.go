// Package config reads process settings from the environment. A .env file in
// the working directory is loaded first when present; real environment
// variables always win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name, e.g. TRADEPOST_DB_PATH.
const Prefix = "TRADEPOST"

type Config struct {
	DBPath      string `envconfig:"DB_PATH" default:"data/tradepost.db"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text"`
	CatalogPath string `envconfig:"CATALOG_PATH"` // empty = built-in catalog
	TuningPath  string `envconfig:"TUNING_PATH"`  // empty = built-in defaults
	Seed        int64  `envconfig:"SEED"`         // 0 = random per session
	MapSeed     int64  `envconfig:"MAP_SEED"`     // non-zero replaces the catalog's towns with a generated map
}

// Load reads envFile (skipped when it does not exist) and then the
// environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("config: log format %q is not text or json", cfg.LogFormat)
	}
	return &cfg, nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", s, err)
	}
	return lvl, nil
}

// Logger builds the process logger. Logs go to stderr so command output on
// stdout stays clean.
func (c *Config) Logger() *slog.Logger {
	lvl, _ := ParseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: lvl}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

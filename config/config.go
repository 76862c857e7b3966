// ABOUTME: Runtime configuration from .env files, environment variables, and XDG defaults
// ABOUTME: Selects the storage backend and opens the matching gateway
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/harperreed/rapport/db"
	"github.com/harperreed/rapport/remote"
)

const AppName = "rapport"

const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendREST   = "rest"
	BackendMemory = "memory"
)

// Environment variables read by Load.
const (
	EnvBackend  = "RAPPORT_BACKEND"
	EnvDBPath   = "RAPPORT_DB_PATH"
	EnvKVPath   = "RAPPORT_KV_PATH"
	EnvRESTURL  = "RAPPORT_REST_URL"
	EnvRESTKey  = "RAPPORT_REST_KEY"
	EnvTimeout  = "RAPPORT_TIMEOUT"
	EnvLogLevel = "RAPPORT_LOG_LEVEL"
)

type Config struct {
	Backend  string
	DBPath   string
	KVPath   string
	RESTURL  string
	RESTKey  string
	Timeout  time.Duration // zero means no client timeout
	LogLevel slog.Level
}

// DataDir is the XDG data directory holding the local stores.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

func Default() *Config {
	return &Config{
		Backend:  BackendSQLite,
		DBPath:   filepath.Join(DataDir(), AppName+".db"),
		KVPath:   filepath.Join(DataDir(), "kv"),
		LogLevel: slog.LevelInfo,
	}
}

// Load applies the given .env files (or ./.env when none are named) and
// then the environment on top of the defaults. Variables already set in
// the environment win over .env values. A missing .env file is not an error.
// The result is not validated so flags can still override it.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}

	cfg := Default()
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvKVPath); v != "" {
		cfg.KVPath = v
	}
	cfg.RESTURL = os.Getenv(EnvRESTURL)
	cfg.RESTKey = os.Getenv(EnvRESTKey)

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		if err := cfg.SetLogLevel(v); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// SetLogLevel parses debug, info, warn, or error.
func (c *Config) SetLogLevel(s string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", s, err)
	}
	c.LogLevel = level
	return nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("%s backend needs a database path", c.Backend)
		}
	case BackendBadger:
		if c.KVPath == "" {
			return fmt.Errorf("%s backend needs a directory", c.Backend)
		}
	case BackendREST:
		if c.RESTURL == "" || c.RESTKey == "" {
			return fmt.Errorf("%s backend needs %s and %s", c.Backend, EnvRESTURL, EnvRESTKey)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s, %s or %s)", c.Backend, BackendSQLite, BackendBadger, BackendREST, BackendMemory)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// OpenGateway constructs the gateway for the configured backend. The caller owns it and must Close it.
func (c *Config) OpenGateway(logger *slog.Logger) (db.Gateway, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.Backend {
	case BackendBadger:
		gw, err := db.NewBadgerGateway(c.KVPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open kv store: %w", err)
		}
		return gw, nil
	case BackendREST:
		opts := []remote.Option{remote.WithTimeout(c.Timeout)}
		if logger != nil {
			opts = append(opts, remote.WithLogger(logger))
		}
		return remote.NewRESTGateway(c.RESTURL, c.RESTKey, opts...), nil
	case BackendMemory:
		gw, err := db.NewMemoryGateway()
		if err != nil {
			return nil, fmt.Errorf("failed to open in-memory store: %w", err)
		}
		return gw, nil
	}
	gw, err := db.OpenSQLiteGateway(c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return gw, nil
}

// Location describes where data lives, for logging.
func (c *Config) Location() string {
	switch c.Backend {
	case BackendBadger:
		return c.KVPath
	case BackendREST:
		return c.RESTURL
	case BackendMemory:
		return "in-memory"
	}
	return c.DBPath
}

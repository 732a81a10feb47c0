// Package config reads the optional YAML config file and applies
// environment overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/storage/postgres"
	"github.com/julianstephens/habitline/internal/utils"
)

// Environment overrides, applied after the file is read.
const (
	EnvDatabase      = "HABITLINE_DB"
	EnvUser          = "HABITLINE_USER"
	EnvSessionSecret = "HABITLINE_SESSION_SECRET"
)

// MemoryDatabase selects the in-process store.
const MemoryDatabase = ":memory:"

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendMemory   Backend = "memory"
)

type Config struct {
	// Database is a SQLite file path, a PostgreSQL connection string or ":memory:".
	Database string `yaml:"database"`
	Timezone string `yaml:"timezone,omitempty"`
	Debug    bool   `yaml:"debug,omitempty"`
	UserID   string `yaml:"user_id,omitempty"`
	// RefreshSchedule is the cron expression used by "analytics --watch".
	RefreshSchedule string `yaml:"refresh_schedule,omitempty"`

	// SessionSecret signs session tokens. It is only read from the environment.
	SessionSecret string `yaml:"-"`
}

func Default() Config {
	return Config{
		Database:        constants.DefaultConfigPath,
		RefreshSchedule: constants.DefaultRefreshSchedule,
	}
}

// Load reads path, falling back to defaults when the file does not exist, then
// applies environment overrides via getenv. A nil getenv means os.Getenv.
func Load(path string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()

	resolved, err := utils.ExpandHome(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", resolved, err)
		}
	}

	if v := strings.TrimSpace(getenv(EnvDatabase)); v != "" {
		cfg.Database = v
	}
	if v := strings.TrimSpace(getenv(EnvUser)); v != "" {
		cfg.UserID = v
	}
	cfg.SessionSecret = getenv(EnvSessionSecret)
	if cfg.RefreshSchedule == "" {
		cfg.RefreshSchedule = constants.DefaultRefreshSchedule
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	resolved, err := utils.ExpandHome(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(resolved, data, 0o600)
}

// Backend picks the storage backend from the shape of Database.
func (c Config) Backend() Backend {
	db := strings.TrimSpace(c.Database)
	switch {
	case db == MemoryDatabase:
		return BackendMemory
	case postgres.IsConnString(db), strings.Contains(db, "host="), strings.Contains(db, "dbname="):
		return BackendPostgres
	default:
		return BackendSQLite
	}
}

// Validate rejects settings that would fail later in a less helpful place.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return errors.New("database must not be empty")
	}
	if c.Backend() == BackendPostgres {
		if _, err := postgres.ValidateConnString(c.Database); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("%w; store the connection string in the OS keyring or use a .pgpass file", err)
			}
			return err
		}
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	return nil
}

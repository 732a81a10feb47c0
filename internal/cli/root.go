package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/julianstephens/habitline/internal/config"
	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/identity"
	"github.com/julianstephens/habitline/internal/keyring"
	"github.com/julianstephens/habitline/internal/logger"
	"github.com/julianstephens/habitline/internal/metrics"
	"github.com/julianstephens/habitline/internal/settings"
	"github.com/julianstephens/habitline/internal/storage"
	"github.com/julianstephens/habitline/internal/storage/memory"
	"github.com/julianstephens/habitline/internal/storage/postgres"
	"github.com/julianstephens/habitline/internal/storage/sqlite"
	"github.com/julianstephens/habitline/internal/tracker"
	"github.com/julianstephens/habitline/internal/utils"
)

// Context is handed to every command's Run method.
type Context struct {
	Ctx        context.Context
	Config     config.Config
	ConfigFile string
	Store      storage.Provider
	Metrics    *metrics.Metrics
	Tracker    *tracker.Service
	Location   *time.Location
}

// Migrator is implemented by the SQL backends.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest int, err error)
}

// OpenStore picks a backend from the configured database. Nothing is opened
// until the caller runs Init or Load.
func OpenStore(cfg config.Config) (storage.Provider, error) {
	switch cfg.Backend() {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendPostgres:
		if postgres.HasEmbeddedCredentials(cfg.Database) {
			return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed; use '%s keyring set' or a .pgpass file", constants.AppName)
		}
		return postgres.New(cfg.Database), nil
	default:
		path, err := utils.ExpandHome(cfg.Database)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path), nil
	}
}

// ResolveDatabase returns the keyring connection string when none was
// configured explicitly.
func ResolveDatabase(cfg config.Config, explicit bool) config.Config {
	if explicit || cfg.Backend() != config.BackendSQLite {
		return cfg
	}
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Debug("keyring lookup skipped", "error", err)
		}
		return cfg
	}
	cfg.Database = connStr
	return cfg
}

// Identity builds the identity chain: a valid signed session wins over the
// configured user id.
func (c *Context) Identity() identity.Provider {
	chain := identity.Chain{}
	if c.Config.SessionSecret != "" {
		if token, err := keyring.GetSessionToken(); err == nil {
			if mgr, err := identity.NewSessionManager(c.Config.SessionSecret, 0); err == nil {
				chain = append(chain, identity.Session{Manager: mgr, Token: token})
			}
		}
	}
	chain = append(chain, identity.FromContext{}, identity.Static(c.Config.UserID))
	return chain
}

// Setup loads client settings and wires the tracker. The store must already
// be initialized or loaded.
func (c *Context) Setup() error {
	if c.Ctx == nil {
		c.Ctx = context.Background()
	}
	s, err := settings.Load(c.Ctx, c.Store)
	if err != nil {
		return err
	}
	tz := s.Timezone
	if c.Config.Timezone != "" {
		tz = c.Config.Timezone
	}
	loc, err := utils.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	c.Location = loc
	if c.Metrics == nil {
		c.Metrics = metrics.New()
	}
	c.Tracker = tracker.New(c.Store, c.Identity(),
		tracker.WithMetrics(c.Metrics),
		tracker.WithLocation(loc),
	)
	return nil
}

// TouchLastVisit records this run and logs the previous one. Failures are not fatal.
func (c *Context) TouchLastVisit() {
	if c.Tracker == nil {
		return
	}
	prev, err := settings.TouchLastVisit(c.Ctx, c.Store, c.Tracker.Today())
	if err != nil {
		logger.Warn("failed to update last visit", "error", err)
		return
	}
	logger.Debug("last visit", "previous", prev)
}

// DefaultUserID is the OS account name, used when no user id is configured.
func DefaultUserID() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return sanitizeUser(u.Username)
	}
	return sanitizeUser(os.Getenv("USER"))
}

// sanitizeUser strips a Windows domain prefix.
func sanitizeUser(name string) string {
	if i := strings.LastIndex(name, `\`); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name)
}

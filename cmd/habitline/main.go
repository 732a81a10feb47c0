package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitline/internal/cli"
	"github.com/julianstephens/habitline/internal/cli/analytics"
	"github.com/julianstephens/habitline/internal/cli/habits"
	"github.com/julianstephens/habitline/internal/cli/settings"
	"github.com/julianstephens/habitline/internal/cli/system"
	"github.com/julianstephens/habitline/internal/config"
	"github.com/julianstephens/habitline/internal/constants"
	apperrors "github.com/julianstephens/habitline/internal/errors"
	"github.com/julianstephens/habitline/internal/logger"
	"github.com/julianstephens/habitline/internal/metrics"
	"github.com/julianstephens/habitline/internal/utils"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." type:"string" default:"~/.config/habitline/config.yaml"`
	DB       string `help:"SQLite path, PostgreSQL connection string or :memory:. For PostgreSQL, credentials must NOT be embedded in the connection string. Use .pgpass or the OS keyring instead." name:"db"`
	User     string `help:"User id to act as, overriding the config file."`
	Timezone string `help:"IANA timezone that decides what \"today\" is."`
	Debug    bool   `help:"Log at debug level and mirror logs to stderr."`

	Init      system.InitCmd         `cmd:"" help:"Initialize habitline storage."`
	Migrate   system.MigrateCmd      `cmd:"" help:"Run database migrations."`
	Doctor    system.DoctorCmd       `cmd:"" help:"Run health checks and diagnostics."`
	Validate  system.ValidateCmd     `cmd:"" help:"Validate habits and check-ins for inconsistencies."`
	Debugging system.DebugCmd        `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Habit     habits.HabitCmd        `cmd:"" help:"Manage habits and check-ins."`
	Analytics analytics.AnalyticsCmd `cmd:"" help:"Show completion rates and weekly totals."`
	Stats     analytics.StatsCmd     `cmd:"" help:"Print process metrics in the Prometheus text format."`
	Settings  settings.SettingsCmd   `cmd:"" help:"Manage application settings."`
	Session   system.SessionCmd      `cmd:"" help:"Manage the signed session used to identify you."`
	Keyring   struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability." default:"1"`
	} `cmd:"" help:"Manage secrets in the OS keyring."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with daily check-ins and streaks"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, explicitDB, err := loadConfig()
	if err != nil {
		apperrors.Fatal(err)
	}

	logDir, err := utils.ExpandHome(constants.DefaultConfigDir)
	if err == nil {
		err = logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: logDir})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	cfg = cli.ResolveDatabase(cfg, explicitDB)
	if err := cfg.Validate(); err != nil {
		apperrors.Fatal(err)
	}

	store, err := cli.OpenStore(cfg)
	if err != nil {
		apperrors.Fatal(err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := &cli.Context{
		Ctx:        ctx,
		Config:     cfg,
		ConfigFile: CLI.Config,
		Store:      store,
		Metrics:    metrics.New(),
	}

	command := kctx.Command()
	if needsStore(command) {
		// The memory backend starts empty on every run
		if cfg.Backend() == config.BackendMemory {
			err = store.Init(ctx)
		} else {
			err = store.Load(ctx)
		}
		if err == nil {
			err = appCtx.Setup()
		}
		if err != nil {
			store.Close()
			apperrors.Fatal(err)
		}
		appCtx.TouchLastVisit()
	}
	logger.Debug("running command", "command", command, "backend", cfg.Backend())

	if err := kctx.Run(appCtx); err != nil {
		store.Close()
		apperrors.Fatal(err)
	}
}

// loadConfig merges the config file, environment and global flags, in
// increasing precedence. explicitDB reports whether the database was chosen
// by the user rather than defaulted.
func loadConfig() (config.Config, bool, error) {
	cfg, err := config.Load(CLI.Config, nil)
	if err != nil {
		return config.Config{}, false, err
	}
	if CLI.DB != "" {
		cfg.Database = CLI.DB
	}
	if CLI.User != "" {
		cfg.UserID = CLI.User
	}
	if CLI.Timezone != "" {
		cfg.Timezone = CLI.Timezone
	}
	if CLI.Debug {
		cfg.Debug = true
	}
	return cfg, cfg.Database != constants.DefaultConfigPath, nil
}

// needsStore reports whether command runs against loaded storage. init
// creates it, doctor loads it itself, and secret management never touches it.
func needsStore(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "init", "doctor", "keyring":
		return false
	case "session":
		return len(fields) > 1 && fields[1] == "status"
	default:
		return true
	}
}

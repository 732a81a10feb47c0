package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/habitline/internal/cli"
	"github.com/julianstephens/habitline/internal/config"
	"github.com/julianstephens/habitline/internal/constants"
	"github.com/julianstephens/habitline/internal/logger"
	"github.com/julianstephens/habitline/internal/utils"
)

type InitCmd struct {
	Force bool   `help:"Force reset by deleting existing database before initialization."`
	User  string `help:"User id to record in the config file (default: the OS account name)."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && ctx.Config.Backend() == config.BackendSQLite {
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			// Close first to prevent file locking issues
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(ctx.Ctx); err != nil {
		return err
	}
	fmt.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())

	if err := c.writeConfig(ctx); err != nil {
		return err
	}
	return ctx.Setup()
}

// writeConfig creates the config file on first run. An existing file is only
// touched when it has no user id yet.
func (c *InitCmd) writeConfig(ctx *cli.Context) error {
	if ctx.ConfigFile == "" {
		return nil
	}
	path, err := utils.ExpandHome(ctx.ConfigFile)
	if err != nil {
		return err
	}

	cfg, err := config.Load(path, func(string) string { return "" })
	if err != nil {
		return err
	}
	userID := c.User
	if userID == "" {
		userID = cfg.UserID
	}
	if userID == "" {
		userID = cli.DefaultUserID()
	}
	if _, err := os.Stat(path); err == nil && cfg.UserID == userID {
		return nil
	}

	cfg.UserID = userID
	// Connection strings may come from the keyring and stay there.
	if ctx.Config.Backend() == config.BackendSQLite {
		cfg.Database = ctx.Config.Database
	}
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if ctx.Config.UserID == "" {
		ctx.Config.UserID = userID
	}
	logger.Info("config written", "path", path, "user", userID)
	fmt.Printf("Wrote config for user %q to: %s\n", userID, path)
	return nil
}

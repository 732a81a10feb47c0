package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitline/internal/cli"
	"github.com/julianstephens/habitline/internal/config"
	"github.com/julianstephens/habitline/internal/identity"
	"github.com/julianstephens/habitline/internal/keyring"
)

type SessionCmd struct {
	Login  SessionLoginCmd  `cmd:"" help:"Sign a session token for a user and store it in the OS keyring."`
	Logout SessionLogoutCmd `cmd:"" help:"Remove the stored session token."`
	Status SessionStatusCmd `cmd:"" help:"Show which user commands run as." default:"1"`
}

type SessionLoginCmd struct {
	User string `arg:"" help:"User id to sign in as."`
}

func (cmd *SessionLoginCmd) Run(ctx *cli.Context) error {
	mgr, err := identity.NewSessionManager(ctx.Config.SessionSecret, 0)
	if err != nil {
		if errors.Is(err, identity.ErrMissingSecret) {
			return fmt.Errorf("%w: export %s first", err, config.EnvSessionSecret)
		}
		return err
	}
	token, err := mgr.Generate(cmd.User)
	if err != nil {
		return err
	}
	if err := keyring.SetSessionToken(token); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	fmt.Printf("✓ Signed in as %s\n", cmd.User)
	return nil
}

type SessionLogoutCmd struct{}

func (cmd *SessionLogoutCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteSessionToken(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no session token found in keyring")
		}
		return fmt.Errorf("failed to delete session token: %w", err)
	}
	fmt.Println("✓ Signed out")
	return nil
}

type SessionStatusCmd struct{}

func (cmd *SessionStatusCmd) Run(ctx *cli.Context) error {
	id, ok := ctx.Identity().CurrentUserID(ctx.Ctx)
	if !ok {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("Signed in as %s\n", id)
	return nil
}

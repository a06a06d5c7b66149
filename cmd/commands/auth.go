package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/clombard/mailtriage/internal/mailbox"
)

// NewAuthCommand returns the auth subcommand.
func NewAuthCommand() *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Run the Gmail OAuth consent flow and store the token",
		Action: runAuth,
	}
}

func runAuth(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return mailbox.Authorize(ctx, cfg.Gmail)
}

package commands

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/clombard/mailtriage/internal/config"
	"github.com/clombard/mailtriage/internal/storage"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "mailtriage",
		Usage: "LLM-assisted email triage for a single inbox",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewRunCommand(),
			NewRescanCommand(),
			NewTasksCommand(),
			NewSendersCommand(),
			NewInstructCommand(),
			NewAuthCommand(),
		},
	}
}

// loadConfig applies the debug flag to the default logger, loads the config
// file named by --config, and makes sure the data files exist.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	level := slog.LevelInfo
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureDataFiles(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

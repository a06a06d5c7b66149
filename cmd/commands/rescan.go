package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/clombard/mailtriage/internal/report"
)

// NewRescanCommand returns the rescan subcommand.
func NewRescanCommand() *cli.Command {
	return &cli.Command{
		Name:  "rescan",
		Usage: "Re-analyze the last N days, one window per day, without touching the watermark",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "days",
				Aliases: []string{"d"},
				Usage:   "Number of days to rescan",
				Value:   1,
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Named model provider to use (default from config)",
			},
		},
		Action: runRescan,
	}
}

func runRescan(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	eng, err := buildEngine(ctx, cfg, cmd.String("model"))
	if err != nil {
		return err
	}

	summaries, runErr := eng.RescanDays(ctx, int(cmd.Int("days")))
	if len(summaries) > 0 {
		md := report.RenderAll(summaries)
		if err := report.WriteFile(cfg.ReportPath, md); err != nil {
			return err
		}
		printMarkdown(md)
		fmt.Fprintf(os.Stderr, "report written to %s\n", cfg.ReportPath)
	}
	return runErr
}

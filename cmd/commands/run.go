package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/clombard/mailtriage/internal/config"
	"github.com/clombard/mailtriage/internal/engine"
	"github.com/clombard/mailtriage/internal/llm"
	"github.com/clombard/mailtriage/internal/mailbox"
	"github.com/clombard/mailtriage/internal/models"
	"github.com/clombard/mailtriage/internal/report"
	"github.com/clombard/mailtriage/internal/storage"
)

// NewRunCommand returns the run subcommand.
func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the daily triage over unread mail since the last run",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "since",
				Usage: "Override the window start (RFC 3339, e.g. 2026-09-01T00:00:00Z)",
			},
			&cli.BoolFlag{
				Name:  "no-state",
				Usage: "Do not advance the last-run watermark",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Named model provider to use (default from config)",
			},
			&cli.StringFlag{
				Name:  "instruct",
				Usage: "After the run, merge this feedback into the triage instructions",
			},
		},
		Action: runDaily,
	}
}

func runDaily(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := engine.RunOptions{UpdateState: !cmd.Bool("no-state")}
	if s := cmd.String("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("parse --since: %w", err)
		}
		opts.SinceOverride = &t
	}

	eng, err := buildEngine(ctx, cfg, cmd.String("model"))
	if err != nil {
		return err
	}

	summary, runErr := eng.RunDaily(ctx, opts)
	if summary != nil {
		md := report.Render(summary)
		if err := report.WriteFile(cfg.ReportPath, md); err != nil {
			return err
		}
		printMarkdown(md)
		fmt.Fprintf(os.Stderr, "report written to %s\n", cfg.ReportPath)
	}
	if runErr != nil {
		return runErr
	}

	if feedback := cmd.String("instruct"); feedback != "" {
		if _, err := eng.UpdateInstructions(ctx, feedback); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "instructions updated")
	}
	return nil
}

// buildEngine wires the store, the Gmail client, and the chat model into an
// engine.
func buildEngine(ctx context.Context, cfg *config.Config, modelName string) (*engine.Engine, error) {
	store := storage.NewStore(cfg)

	mb, err := mailbox.NewGmailClient(ctx, cfg.Gmail)
	if err != nil {
		return nil, err
	}

	chatModel, err := models.ForName(ctx, cfg.Models, modelName)
	if err != nil {
		return nil, err
	}
	var llmOpts []llm.Option
	if cfg.Triage.RepairJSON {
		llmOpts = append(llmOpts, llm.WithRepair())
	}

	return engine.New(cfg, store, mb, llm.NewClient(chatModel, llmOpts...)), nil
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when the renderer cannot be built (e.g. no TTY).
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Println(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/clombard/mailtriage/internal/storage"
)

// NewInstructCommand returns the instruct subcommand.
func NewInstructCommand() *cli.Command {
	return &cli.Command{
		Name:      "instruct",
		Usage:     "Merge feedback into the triage instructions via the model",
		ArgsUsage: "<feedback>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "show",
				Usage: "Print the current instructions and exit",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Named model provider to use (default from config)",
			},
		},
		Action: runInstruct,
	}
}

func runInstruct(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("show") {
		store := storage.NewStore(cfg)
		text, err := store.LoadInstructions()
		if err != nil {
			return err
		}
		fmt.Print(text)
		return nil
	}

	feedback := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if feedback == "" {
		// No argument: read the feedback from stdin.
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read feedback from stdin: %w", err)
		}
		feedback = strings.TrimSpace(string(data))
	}
	if feedback == "" {
		return fmt.Errorf("usage: mailtriage instruct <feedback>")
	}

	eng, err := buildEngine(ctx, cfg, cmd.String("model"))
	if err != nil {
		return err
	}

	revised, err := eng.UpdateInstructions(ctx, feedback)
	if err != nil {
		return err
	}
	fmt.Println("Instructions updated:")
	fmt.Println()
	fmt.Print(revised)
	return nil
}

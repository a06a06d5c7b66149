package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/clombard/mailtriage/internal/storage"
	"github.com/clombard/mailtriage/internal/triage"
)

// NewSendersCommand returns the senders subcommand.
func NewSendersCommand() *cli.Command {
	return &cli.Command{
		Name:  "senders",
		Usage: "Manage known-sender profiles",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List known senders",
				Action: runSendersList,
			},
			{
				Name:      "set",
				Usage:     "Create or edit a sender profile",
				ArgsUsage: "<email>",
				Action:    runSendersSet,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name",
					},
					&cli.StringFlag{
						Name:  "importance",
						Usage: "high, normal, or low",
					},
					&cli.StringFlag{
						Name:  "role",
						Usage: "student, collaborator, admin, family, notification, or other",
					},
					&cli.StringFlag{
						Name:  "notes",
						Usage: "Free-form notes",
					},
					&cli.BoolFlag{
						Name:  "pin",
						Usage: "Pin as a VIP",
					},
					&cli.BoolFlag{
						Name:  "unpin",
						Usage: "Remove the VIP pin",
					},
				},
			},
		},
		DefaultCommand: "list",
	}
}

func runSendersList(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store := storage.NewStore(cfg)

	file, err := store.LoadSenders()
	if err != nil {
		return err
	}
	if len(file.Senders) == 0 {
		fmt.Println("No known senders.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tNAME\tIMPORTANCE\tROLE\tPIN\tLAST SEEN")
	for _, s := range file.Senders {
		pin := ""
		if s.Pinned {
			pin = "*"
		}
		lastSeen := "-"
		if s.LastSeenAt != nil {
			lastSeen = s.LastSeenAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", s.Email, s.Name, s.Importance, s.Role, pin, lastSeen)
	}
	return w.Flush()
}

func runSendersSet(_ context.Context, cmd *cli.Command) error {
	email := cmd.Args().First()
	if email == "" {
		return fmt.Errorf("usage: mailtriage senders set <email>")
	}
	if cmd.Bool("pin") && cmd.Bool("unpin") {
		return fmt.Errorf("--pin and --unpin are mutually exclusive")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store := storage.NewStore(cfg)

	file, err := store.LoadSenders()
	if err != nil {
		return err
	}

	idx := -1
	for i, s := range file.Senders {
		if s.Email == email {
			idx = i
			break
		}
	}
	if idx < 0 {
		file.Senders = append(file.Senders, triage.SenderProfile{
			Email:      email,
			Importance: triage.ImportanceNormal,
			Role:       triage.RoleOther,
		})
		idx = len(file.Senders) - 1
	}
	s := &file.Senders[idx]

	if v := cmd.String("name"); v != "" {
		s.Name = v
	}
	if v := cmd.String("importance"); v != "" {
		imp := triage.SenderImportance(v)
		switch imp {
		case triage.ImportanceHigh, triage.ImportanceNormal, triage.ImportanceLow:
			s.Importance = imp
		default:
			return fmt.Errorf("unknown importance: %s", v)
		}
	}
	if v := cmd.String("role"); v != "" {
		role := triage.SenderRole(v)
		switch role {
		case triage.RoleStudent, triage.RoleCollaborator, triage.RoleAdmin,
			triage.RoleFamily, triage.RoleNotification, triage.RoleOther:
			s.Role = role
		default:
			return fmt.Errorf("unknown role: %s", v)
		}
	}
	if v := cmd.String("notes"); v != "" {
		s.Notes = v
	}
	if cmd.Bool("pin") {
		s.Pinned = true
	}
	if cmd.Bool("unpin") {
		s.Pinned = false
	}

	if err := store.SaveSenders(file); err != nil {
		return err
	}
	fmt.Printf("Updated %s.\n", email)
	return nil
}

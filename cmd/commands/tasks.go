package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/clombard/mailtriage/internal/storage"
	"github.com/clombard/mailtriage/internal/triage"
)

// NewTasksCommand returns the tasks subcommand.
func NewTasksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "Manage the task list",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List tasks",
				Action: runTasksList,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Usage:   "Include done tasks",
					},
				},
			},
			{
				Name:      "add",
				Usage:     "Add a task manually",
				ArgsUsage: "<description>",
				Action:    runTasksAdd,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "priority",
						Aliases: []string{"p"},
						Usage:   "Priority 1-10, higher is more urgent",
						Value:   triage.DefaultPriority,
					},
					&cli.StringFlag{
						Name:  "due",
						Usage: "Due date (YYYY-MM-DD)",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Tag (repeatable)",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Task source: email, manual, or other",
						Value: string(triage.SourceManual),
					},
				},
			},
			{
				Name:      "done",
				Usage:     "Mark a task done",
				ArgsUsage: "<task_id>",
				Action:    runTasksDone,
			},
		},
		DefaultCommand: "list",
	}
}

func runTasksList(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store := storage.NewStore(cfg)

	file, err := store.LoadTasks()
	if err != nil {
		return err
	}

	tasks := file.Tasks
	if !cmd.Bool("all") {
		open := tasks[:0:0]
		for _, t := range tasks {
			if t.Status != triage.TaskDone {
				open = append(open, t)
			}
		}
		tasks = open
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}
	triage.SortForDisplay(tasks)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIO\tDUE\tDESCRIPTION")
	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", t.ID, t.Status, t.Priority, due, t.Description)
	}
	return w.Flush()
}

func runTasksAdd(_ context.Context, cmd *cli.Command) error {
	description := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if description == "" {
		return fmt.Errorf("usage: mailtriage tasks add <description>")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store := storage.NewStore(cfg)

	file, err := store.LoadTasks()
	if err != nil {
		return err
	}

	source := triage.TaskSource(cmd.String("source"))
	switch source {
	case triage.SourceEmail, triage.SourceManual, triage.SourceOther:
	default:
		return fmt.Errorf("unknown source: %s", source)
	}

	task := &triage.Task{
		Source:      source,
		Description: description,
		Priority:    int(cmd.Int("priority")),
		Tags:        cmd.StringSlice("tag"),
	}
	if s := cmd.String("due"); s != "" {
		d, err := triage.ParseDate(s)
		if err != nil {
			return fmt.Errorf("parse --due: %w", err)
		}
		task.DueDate = &d
	}

	triage.Apply(file, []triage.TaskOperation{{Op: triage.OpAdd, Task: task}})
	if err := store.SaveTasks(file); err != nil {
		return err
	}

	added := file.Tasks[len(file.Tasks)-1]
	fmt.Printf("Added %s.\n", added.ID)
	return nil
}

func runTasksDone(_ context.Context, cmd *cli.Command) error {
	taskID := cmd.Args().First()
	if taskID == "" {
		return fmt.Errorf("usage: mailtriage tasks done <task_id>")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store := storage.NewStore(cfg)

	file, err := store.LoadTasks()
	if err != nil {
		return err
	}

	found := false
	for _, t := range file.Tasks {
		if t.ID == taskID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("no such task: %s", taskID)
	}

	triage.Apply(file, []triage.TaskOperation{{Op: triage.OpClose, TaskID: taskID}})
	if err := store.SaveTasks(file); err != nil {
		return err
	}
	fmt.Printf("Closed %s.\n", taskID)
	return nil
}

package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/tasknotify/pkg/clock"
	"github.com/harrisonrobin/tasknotify/pkg/model"
	"github.com/harrisonrobin/tasknotify/pkg/overdue"
)

const displayLayout = "2006-01-02 15:04"

func newAddCmd() *cobra.Command {
	var at, description string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Schedule a notification and add the task",
		Example: `  tasknotify add "Call mom" --at "2030-05-01 09:30"
  tasknotify add "Pay rent" --at "2030-05-01 18:00" --description "Transfer before 20:00"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			local, err := clock.ParseLocal(at)
			if err != nil {
				return err
			}
			when, err := local.In(a.device)
			if err != nil {
				return err
			}

			task, err := a.engine.AddTask(ctx, model.Draft{
				Name:        strings.Join(args, " "),
				Description: description,
				Date:        when.UnixMilli(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q for %s (%s)\n", task.Name, when.In(a.device).Format(displayLayout), task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", `Fire time on the device clock, "2006-01-02 15:04"`)
	cmd.Flags().StringVarP(&description, "description", "d", "", "Notification body")
	cmd.MarkFlagRequired("at")
	return cmd
}

func newListCmd() *cobra.Command {
	var overdueOnly bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks by fire time",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			now := time.Now()
			tasks := a.engine.Tasks()
			if overdueOnly {
				tasks = a.engine.Overdue(now)
			}
			printTasks(cmd.OutOrStdout(), tasks, now, a.device)
			return nil
		},
	}

	cmd.Flags().BoolVar(&overdueOnly, "overdue", false, "Only unfinished tasks whose time has passed")
	return cmd
}

func printTasks(w io.Writer, tasks []model.Task, now time.Time, loc *time.Location) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	for _, t := range tasks {
		mark := " "
		switch {
		case t.IsFinished:
			mark = "✓"
		case overdue.IsOverdue(t, now):
			mark = "!"
		}
		fmt.Fprintf(w, "%s %s  %-30s %s\n", mark, time.UnixMilli(t.Date).In(loc).Format(displayLayout), t.Name, t.ID)
		if t.Description != "" {
			fmt.Fprintf(w, "    %s\n", t.Description)
		}
	}
}

func newDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's finished flag",
		Long: `Toggle a task's finished flag.

Marking a task unfinished again does not reschedule its notification.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			id := args[0]
			if model.Find(a.engine.Tasks(), id) < 0 {
				return fmt.Errorf("no task with id %s", id)
			}
			tasks, err := a.engine.ToggleFinished(ctx, id)
			if err != nil {
				return err
			}
			if i := model.Find(tasks, id); i >= 0 && tasks[i].IsFinished {
				fmt.Fprintf(cmd.OutOrStdout(), "Finished %q\n", tasks[i].Name)
			} else if i >= 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Reopened %q\n", tasks[i].Name)
			}
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task, cancelling its notification if still pending",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			id := args[0]
			if model.Find(a.engine.Tasks(), id) < 0 {
				return fmt.Errorf("no task with id %s", id)
			}
			if _, err := a.engine.DeleteTask(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
}

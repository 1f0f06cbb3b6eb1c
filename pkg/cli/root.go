// Package cli implements the tasknotify command line.
package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tasknotify",
		Short: "Tasks that fire exactly one scheduled push notification",
		Long: `tasknotify keeps a local task list in step with notifications scheduled
on a remote push provider (OneSignal, Google Calendar reminders or FCM).

Adding a task schedules its notification first and only then stores the task.
Deleting an unfinished task cancels its notification.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(0)
			}
			log.SetOutput(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/tasknotify/config.yaml)")

	root.AddCommand(
		newAddCmd(),
		newListCmd(),
		newDoneCmd(),
		newDeleteCmd(),
		newImportCmd(),
		newSubscriberCmd(),
		newAuthCmd(),
		newServeCmd(),
		newConfigCmd(),
	)
	return root
}

// Execute runs the root command
func Execute(version string) error {
	root := newRootCmd()
	root.Version = version
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

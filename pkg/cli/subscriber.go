package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrisonrobin/tasknotify/pkg/store"
)

func newSubscriberCmd() *cobra.Command {
	var generate bool

	cmd := &cobra.Command{
		Use:   "subscriber [id]",
		Short: "Show or set the subscriber id notifications are sent to",
		Long: `Show or set the subscriber id notifications are sent to.

For OneSignal this is the external_id alias of the device. For FCM it is the
topic the device subscribed to. --generate stores a fresh random id.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			kvs, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer kvs.Close()
			ts := store.New(kvs)

			out := cmd.OutOrStdout()
			var id string
			switch {
			case generate:
				id = uuid.NewString()
			case len(args) == 1:
				id = args[0]
			default:
				current, err := ts.SubscriberID(ctx)
				if err != nil {
					return err
				}
				if current == "" {
					fmt.Fprintln(out, "No subscriber id set. Run 'tasknotify subscriber <id>' or 'tasknotify subscriber --generate'.")
					return nil
				}
				fmt.Fprintln(out, current)
				return nil
			}

			if err := ts.SetSubscriberID(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(out, "Subscriber id set to %s\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&generate, "generate", false, "Generate and store a random id")
	return cmd
}

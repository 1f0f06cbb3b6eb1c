package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/tasknotify/pkg/api"
	"github.com/harrisonrobin/tasknotify/pkg/fcm"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task API (and deliver FCM notifications)",
		Long: `Serve the task API over HTTP.

With the fcm provider, due notifications are also dispatched from the outbox
every fcm.poll_interval.`,
		Example: `  tasknotify serve --addr :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			var wg sync.WaitGroup
			if a.outbox != nil {
				client, err := fcm.NewMessagingClient(ctx, a.cfg.FCM.CredentialsFile)
				if err != nil {
					return err
				}
				dispatcher := fcm.NewDispatcher(a.outbox, client, a.cfg.FCM.PollInterval)
				wg.Add(1)
				go func() {
					defer wg.Done()
					dispatcher.Run(ctx)
				}()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Starting API at http://localhost%s\n", addr)
			err = api.NewServer(a.engine, a.device).Run(ctx, addr)
			stop()
			wg.Wait()
			if err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr)")
	return cmd
}

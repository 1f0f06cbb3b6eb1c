package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/tasknotify/pkg/auth"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Calendar access for the gcal provider",
		Long: `Authorize Google Calendar access for the gcal provider.

Place the OAuth client credentials.json from the Google Cloud console in
~/.config/tasknotify first. Any stored token is replaced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := auth.GetXdgHome()
			if err != nil {
				return fmt.Errorf("could not find path to configuration directory: %w", err)
			}

			tokenFile := filepath.Join(dir, auth.TokenFile)
			if _, err := os.Stat(tokenFile); err == nil {
				log.Printf("Removing existing token file at '%s'", tokenFile)
				if err := os.Remove(tokenFile); err != nil {
					return fmt.Errorf("could not delete token file '%s': %w. Please delete it manually", tokenFile, err)
				}
			} else if !os.IsNotExist(err) {
				log.Printf("could not check token file '%s': %v", tokenFile, err)
			}

			if err := auth.Authorize(cmd.Context(), auth.CalendarScopes); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authentication successful! Token saved to %s\n", tokenFile)
			return nil
		},
	}
}

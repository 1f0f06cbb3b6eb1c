package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/tasknotify/pkg/importer"
	"github.com/harrisonrobin/tasknotify/pkg/model"
)

func newImportCmd() *cobra.Command {
	var org bool

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Add tasks from JSON or Org-mode files",
		Long: `Add tasks from JSON drafts ({"name","description","date"}) or, with --org,
from "* TODO" headlines carrying a timed DEADLINE. Reads stdin when no file is given.
Each draft is added on its own; a failure is reported and the import continues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var drafts []model.Draft
			switch {
			case org && len(args) > 0:
				drafts, err = importer.ParseOrgFiles(args, a.device)
			case org:
				drafts, err = importer.ParseOrg(cmd.InOrStdin(), a.device)
			case len(args) == 0:
				drafts, err = importer.DecodeJSON(cmd.InOrStdin())
			default:
				for _, path := range args {
					f, openErr := os.Open(path)
					if openErr != nil {
						return openErr
					}
					more, decodeErr := importer.DecodeJSON(f)
					f.Close()
					if decodeErr != nil {
						return fmt.Errorf("%s: %w", path, decodeErr)
					}
					drafts = append(drafts, more...)
				}
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			added, failed := 0, 0
			for _, d := range drafts {
				task, err := a.engine.AddTask(ctx, d)
				if err != nil {
					failed++
					fmt.Fprintf(out, "skip %q: %v\n", d.Name, err)
					continue
				}
				added++
				fmt.Fprintf(out, "added %q (%s)\n", task.Name, task.ID)
			}
			fmt.Fprintf(out, "Imported %d of %d tasks\n", added, len(drafts))
			if failed > 0 {
				return fmt.Errorf("%d tasks could not be imported", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&org, "org", false, "Parse Org-mode instead of JSON")
	return cmd
}

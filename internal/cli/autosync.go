package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xelth-com/ecktms/internal/sync"
)

// NewAutoSyncCommand creates the autosync command.
func NewAutoSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "autosync",
		Short: "Push records queued while the server was unreachable",
		Long: `Push every record in the local cache that has not reached the server.

A record the server still refuses stays queued; the rest of the run goes on.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.Open()
			if err != nil {
				return err
			}
			defer a.Close()

			report := a.Runner.Run(cmd.Context(), a.Session)
			out := cmd.OutOrStdout()

			if rootOpts.Format == "json" {
				return writeJSON(out, map[string]interface{}{
					"skipped":     report.Skipped,
					"pushed":      report.Pushed(),
					"failed":      report.Failed(),
					"collections": report.Collections,
				})
			}

			printReport(cmd, report)
			return nil
		},
	}
}

func printReport(cmd *cobra.Command, report sync.RunReport) {
	out := cmd.OutOrStdout()
	if report.Skipped {
		fmt.Fprintln(out, "autosync already ran in this session")
		return
	}
	for _, c := range report.Collections {
		if c.Attempted == 0 {
			fmt.Fprintf(out, "  %s: nothing queued\n", c.Collection)
			continue
		}
		fmt.Fprintf(out, "  %s: %d/%d pushed\n", c.Collection, c.Pushed, c.Attempted)
		for _, err := range c.Errors {
			yellow.Fprintf(out, "    still queued: %v\n", err)
		}
	}
	if report.Failed() > 0 {
		yellow.Fprintf(out, "%d pushed, %d still queued\n", report.Pushed(), report.Failed())
		return
	}
	green.Fprintf(out, "✓ %d pushed\n", report.Pushed())
}

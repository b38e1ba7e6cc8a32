package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xelth-com/ecktms/internal/models"
	"github.com/xelth-com/ecktms/internal/sync"
)

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	var activeOnly, table bool

	cmd := &cobra.Command{
		Use:   "load <collection>",
		Short: "Fetch a collection, falling back to the local cache",
		Long: `Fetch a collection from the server and refresh the local cache.

When the server cannot be reached the cached snapshot is printed instead and
marked stale. The command only fails on bad arguments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if table && args[0] != models.CollectionBranches {
				return fmt.Errorf("--table is only available for %s", models.CollectionBranches)
			}

			a, err := rootOpts.Open()
			if err != nil {
				return err
			}
			defer a.Close()

			result := a.Service.Load(cmd.Context(), args[0])
			data := result.Data
			if activeOnly {
				data = sync.ActiveOnly(data)
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				return writeJSON(out, map[string]interface{}{
					"synced": result.Synced,
					"data":   data,
				})
			}

			if !result.Synced {
				yellow.Fprintf(out, "stale (served from local cache): %v\n", result.Err)
			}
			if table {
				return writeBranches(out, data)
			}
			return writeEntities(out, data)
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "only records with status Active (or no status)")
	cmd.Flags().BoolVar(&table, "table", false, "render branches as a table")
	return cmd
}

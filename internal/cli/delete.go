package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Delete a record on the server and drop it from the local cache",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[1])
			}

			a, err := rootOpts.Open()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Service.Delete(cmd.Context(), args[0], id); err != nil {
				red.Fprintf(cmd.ErrOrStderr(), "✗ %v\n", err)
				return err
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				return writeJSON(out, map[string]interface{}{"deleted": true, "id": id})
			}
			green.Fprintf(out, "✓ deleted %s/%d\n", args[0], id)
			return nil
		},
	}
}

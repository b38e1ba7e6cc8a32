package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/xelth-com/ecktms/internal/models"
	"github.com/xelth-com/ecktms/internal/sync"
)

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "save <collection> [json]",
		Short: "Create or update a record",
		Long: `Send a record to the server. A record with an "id" is updated, anything
else is created.

If the server refuses or cannot be reached the record is kept in the local
cache and pushed by the next autosync.

Examples:
  ecktms save branches '{"branchName":"North","branchCode":"N1"}'
  ecktms save branches --file branch.json
  cat branch.json | ecktms save branches --file -`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readRecord(cmd, args, file)
			if err != nil {
				return err
			}
			entity, err := models.DecodeEntity(raw)
			if err != nil {
				return err
			}

			a, err := rootOpts.Open()
			if err != nil {
				return err
			}
			defer a.Close()

			saved, err := a.Service.Save(cmd.Context(), args[0], entity)
			out := cmd.OutOrStdout()

			var saveErr *sync.SaveError
			switch {
			case err == nil:
				if rootOpts.Format == "json" {
					return writeJSON(out, map[string]interface{}{"savedLocally": false, "data": saved})
				}
				id, _ := saved.ID()
				green.Fprintf(out, "✓ saved %s/%d\n", args[0], id)
				return nil
			case errors.As(err, &saveErr) && saveErr.SavedLocally:
				if rootOpts.Format == "json" {
					return writeJSON(out, map[string]interface{}{
						"savedLocally": true,
						"data":         saveErr.Entity,
						"error":        saveErr.Cause.Error(),
					})
				}
				yellow.Fprintf(out, "saved locally only (%s): %v\n", saveErr.Entity.LocalID(), saveErr.Cause)
				return nil
			default:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read the record from a file (- for stdin)")
	return cmd
}

func readRecord(cmd *cobra.Command, args []string, file string) ([]byte, error) {
	switch {
	case len(args) == 2 && file != "":
		return nil, fmt.Errorf("pass the record either inline or with --file, not both")
	case len(args) == 2:
		return []byte(args[1]), nil
	case file == "-":
		return io.ReadAll(cmd.InOrStdin())
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("missing record: pass JSON inline or use --file")
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xelth-com/ecktms/internal/app"
	"github.com/xelth-com/ecktms/internal/buildinfo"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string // "json" | "text"

	// Open builds the application shell; tests swap it for an in-memory one
	Open func() (*app.App, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ecktms CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Open: app.FromEnv})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ecktms",
		Short:   "ecktms - offline-tolerant client for the transport management service",
		Version: buildinfo.Get().String(),
		Long: `ecktms keeps a local copy of the transport management collections.

Reads come from the server when it answers and from the local cache otherwise.
Writes the server cannot take are queued locally and pushed by autosync.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewAutoSyncCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

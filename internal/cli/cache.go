package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCacheCommand creates the cache command group.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or reset the local cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List cached collections and their queued records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.Open()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			status := make(map[string]map[string]int)
			for _, collection := range a.Cache.Collections(ctx) {
				status[collection] = map[string]int{
					"records": len(a.Service.Cached(ctx, collection)),
					"pending": a.Service.PendingCount(ctx, collection),
				}
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				return writeJSON(out, status)
			}
			if len(status) == 0 {
				fmt.Fprintln(out, "cache is empty")
				return nil
			}
			for _, collection := range a.Cache.Collections(ctx) {
				s := status[collection]
				line := fmt.Sprintf("  %-20s %5d records", collection, s["records"])
				if s["pending"] > 0 {
					yellow.Fprintf(out, "%s, %d pending\n", line, s["pending"])
					continue
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	})

	var force bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached snapshot, including queued records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.Open()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			pending := 0
			for _, collection := range a.Cache.Collections(ctx) {
				pending += a.Service.PendingCount(ctx, collection)
			}
			if pending > 0 && !force {
				return fmt.Errorf("%d records have not reached the server; run autosync first or pass --force", pending)
			}

			if err := a.Cache.Clear(ctx); err != nil {
				return err
			}
			green.Fprintln(cmd.OutOrStdout(), "✓ cache cleared")
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&force, "force", false, "also drop records still waiting for the server")
	cmd.AddCommand(clearCmd)

	return cmd
}

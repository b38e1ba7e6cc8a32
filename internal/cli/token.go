package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/xelth-com/ecktms/internal/auth"
	"github.com/xelth-com/ecktms/internal/config"
)

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		name string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bridge token for a local UI",
		Long: `Print a token the UI sends as "Authorization: Bearer <token>" to /api/local.
The token is signed with BRIDGE_JWT_SECRET.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.BridgeSecret == "" {
				return fmt.Errorf("BRIDGE_JWT_SECRET is not set, the bridge accepts requests without a token")
			}

			token, err := auth.NewSigner(name, auth.TokenTypeBridge, cfg.BridgeSecret, ttl).Token()
			if err != nil {
				return err
			}

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"token": token, "expiresIn": ttl.String()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "ui", "client name stored in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

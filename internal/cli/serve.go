package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xelth-com/ecktms/internal/app"
	"github.com/xelth-com/ecktms/internal/handlers"
	"github.com/xelth-com/ecktms/internal/logger"
	"github.com/xelth-com/ecktms/internal/websocket"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local bridge for the UI",
		Long: `Run the local HTTP bridge: collection reads and writes under /api/local,
change events on /ws and Prometheus metrics on /metrics.

The process is one session: autosync runs at most once after start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.Open()
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = ":" + a.Config.Port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :$PORT)")
	return cmd
}

// serve runs the bridge until ctx is cancelled
func serve(ctx context.Context, a *app.App, addr string) error {
	log := logger.For("server")

	hub := websocket.NewHub()
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)
	detach := hub.Attach(a.Notifier)
	defer detach()

	router := handlers.NewRouter(a.Service, a.Runner, a.Session, hub, logger.For("http"))
	router.RequireToken(a.Config.BridgeSecret)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if a.SyncConfig.AutoSyncOnStart {
		go func() {
			report := a.Runner.Run(ctx, a.Session)
			if !report.Skipped && report.Failed() > 0 {
				log.Warnf("⚠️ Startup auto-sync left %d records queued", report.Failed())
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("🚀 Bridge starting on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("⚠️ Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}

	log.Info("✅ Shutdown complete")
	return nil
}
